// Command validate provides a small CLI that validates deck preset JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Presence of at least one suit and one value
//   - Duplicate suits or values (which would produce duplicate cards)
//   - Reports the resulting card count (suits x values)
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preset mirrors the JSON schema for a deck preset.
type Preset struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Suits       []string `json:"suits"`
	Values      []string `json:"values"`
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validatePreset loads and validates a single preset JSON file.
func validatePreset(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var preset Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if preset.Name == "" {
		result.Valid = false
		result.Errors = append(result.Errors, "Preset name is required")
	}

	if len(preset.Suits) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Must have at least 1 suit")
	}

	if len(preset.Values) == 0 {
		result.Valid = false
		result.Errors = append(result.Errors, "Must have at least 1 value")
	}

	// Duplicate suits or values would put identical cards in the deck.
	for _, dup := range duplicates(preset.Suits) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate suit: %q", dup))
	}
	for _, dup := range duplicates(preset.Values) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Duplicate value: %q", dup))
	}

	for i, suit := range preset.Suits {
		if strings.TrimSpace(suit) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Empty suit at index %d", i))
		}
	}
	for i, value := range preset.Values {
		if strings.TrimSpace(value) == "" {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Empty value at index %d", i))
		}
	}

	// Add informational data
	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", preset.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Suits: %d (%s)", len(preset.Suits), strings.Join(preset.Suits, ", ")))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Values: %d", len(preset.Values)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Cards: %d", len(preset.Suits)*len(preset.Values)))
	}

	return result
}

// duplicates returns each entry that appears more than once, once per
// duplicated entry.
func duplicates(entries []string) []string {
	seen := make(map[string]int)
	for _, entry := range entries {
		seen[entry]++
	}

	var dups []string
	for _, entry := range entries {
		if seen[entry] > 1 {
			dups = append(dups, entry)
			seen[entry] = 0 // report once
		}
	}
	return dups
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding preset files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validatePreset(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
