// Command analyze prints quick, human-readable heuristics about deck preset
// files in the project's configs directory. It summarizes suits, values, and
// deck size, splits numbered cards from face cards, and flags presets whose
// value lists collide across suits (duplicate card definitions).
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AnalysisPreset is a light struct for reading preset files used by analysis.
type AnalysisPreset struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Suits       []string `json:"suits"`
	Values      []string `json:"values"`
}

func main() {
	files, err := filepath.Glob(filepath.Join("configs", "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzePreset(file)
	}
}

func analyzePreset(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		return
	}

	var preset AnalysisPreset
	if err := json.Unmarshal(data, &preset); err != nil {
		fmt.Printf("Error parsing JSON: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", preset.Name)
	if preset.Description != "" {
		fmt.Printf("Description: %s\n", preset.Description)
	}
	fmt.Printf("Suits: %d (%s)\n", len(preset.Suits), strings.Join(preset.Suits, ", "))
	fmt.Printf("Values per suit: %d\n", len(preset.Values))
	fmt.Printf("Deck size: %d cards\n", len(preset.Suits)*len(preset.Values))

	// Split pip cards from face cards
	var pips, faces []string
	for _, value := range preset.Values {
		if isNumeric(value) {
			pips = append(pips, value)
		} else {
			faces = append(faces, value)
		}
	}
	fmt.Printf("Pip values: %d (%s)\n", len(pips), strings.Join(pips, ", "))
	fmt.Printf("Face values: %d (%s)\n", len(faces), strings.Join(faces, ", "))

	// Duplicate suits or values mean the deck would contain identical cards
	dupSuits := countDuplicates(preset.Suits)
	dupValues := countDuplicates(preset.Values)
	if dupSuits > 0 || dupValues > 0 {
		fmt.Printf("⚠️  WARNING: %d duplicate suits and %d duplicate values - deck would contain identical cards!\n",
			dupSuits, dupValues)
	} else {
		fmt.Printf("✅ All %d cards are unique\n", len(preset.Suits)*len(preset.Values))
	}
}

// isNumeric reports whether a value string is a plain card number.
func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// countDuplicates returns how many entries appear more than once.
func countDuplicates(entries []string) int {
	seen := make(map[string]int)
	for _, entry := range entries {
		seen[entry]++
	}

	count := 0
	for _, n := range seen {
		if n > 1 {
			count++
		}
	}
	return count
}
