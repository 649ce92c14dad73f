// Package testdata provides embedded HL7 v2.5 ADT messages exercising the
// conversion engine's scenarios (§8) and its malformed-input handling (§7).
package testdata

import (
	"embed"
	"fmt"
)

//go:embed *.hl7 malformed/*.hl7
var FS embed.FS

// Scenario file names, one per §8 end-to-end scenario.
const (
	FileS1MinimalADT      = "scenario_s1_minimal_adt_a01.hl7"
	FileS2INSComposedName = "scenario_s2_ins_and_composed_names.hl7"
	FileS3MobileEmail     = "scenario_s3_french_mobile_and_email.hl7"
	FileS4PV1Admission    = "scenario_s4_pv1_admission.hl7"
	FileS5ZBEMerge        = "scenario_s5_zbe_merge.hl7"
	FileS6CoverageEndDate = "scenario_s6_coverage_enddate_recovery.hl7"
	FileFullAdmission     = "full_admission.hl7"

	FileMissingMSH        = "malformed/missing_msh.hl7"
	FileEmpty             = "malformed/empty.hl7"
	FileInvalidDelimiters = "malformed/invalid_delimiters.hl7"
)

// LoadFile loads any test file by name from the embedded filesystem.
func LoadFile(name string) ([]byte, error) {
	data, err := FS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("loading test file %s: %w", name, err)
	}
	return data, nil
}

// MustLoad loads a test file and panics on error. Useful for test setup
// where failure should halt the test.
func MustLoad(name string) []byte {
	data, err := LoadFile(name)
	if err != nil {
		panic(err)
	}
	return data
}

// ListFiles returns every embedded test file name, scenario and malformed.
func ListFiles() ([]string, error) {
	var files []string
	entries, err := FS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("reading root directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			subEntries, err := FS.ReadDir(entry.Name())
			if err != nil {
				return nil, fmt.Errorf("reading directory %s: %w", entry.Name(), err)
			}
			for _, sub := range subEntries {
				if !sub.IsDir() {
					files = append(files, entry.Name()+"/"+sub.Name())
				}
			}
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}
