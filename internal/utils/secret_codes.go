package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var codeColumnNames = []string{"Code", "Secret Code", "SecretCode", "Voucher Code", "Redemption Code"}

// ReadSecretCodesFile parses secret codes from a CSV file
func ReadSecretCodesFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return ParseSecretCodes(file)
}

// ParseSecretCodes reads secret codes from CSV. When the first row carries a
// recognised code column header that column is used, otherwise the first column
// of every row is taken as a code. Blank cells are skipped and duplicates
// dropped, keeping first-seen order.
func ParseSecretCodes(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	codes := []string{}
	seen := make(map[string]struct{})
	add := func(code string) {
		code = strings.TrimSpace(code)
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	first, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return codes, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	codeIdx := findColumnIndex(first, codeColumnNames)
	if codeIdx == -1 {
		codeIdx = 0
		if len(first) > 0 {
			add(first[0])
		}
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if codeIdx < len(record) {
			add(record[codeIdx])
		}
	}
	return codes, nil
}

func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}
