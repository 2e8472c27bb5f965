// Package dataset loads the Pokémon stats table and provides exploration over labeled rows.
package dataset

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// utf8BOM is stripped from the first header cell when present.
const utf8BOM = "\ufeff"

// requiredColumns is the canonical order used to report the first missing column.
var requiredColumns = append([]string{schema.ColName}, schema.StatColumns...)

// optionalColumns populate entity fields when present.
var optionalColumns = []string{
	schema.ColIndex,
	schema.ColType1,
	schema.ColType2,
	schema.ColGeneration,
	schema.ColLegendary,
}

// Load reads and validates the input table at path.
func Load(path string) (*schema.EntityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read input table: %w", err)
	}
	return Parse(raw, path)
}

// HashBytes returns the sha256 hex digest used as the source content hash.
func HashBytes(raw []byte) string {
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Parse validates raw CSV bytes and builds an EntityTable. It fails fast on the
// first structural problem: missing required columns, ragged records, or
// non-integer stat cells.
func Parse(raw []byte, source string) (*schema.EntityTable, error) {
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.ReuseRecord = false

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &contract.EmptyInputError{Source: source}
	}
	if err != nil {
		return nil, malformed(source, err)
	}
	header = append([]string(nil), header...)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	positions, err := indexHeader(header, source)
	if err != nil {
		return nil, err
	}

	table := &schema.EntityTable{
		Source:     source,
		SourceHash: HashBytes(raw),
		Header:     header,
		Optional:   make(map[string]struct{}),
	}
	for _, col := range optionalColumns {
		if _, ok := positions[col]; ok {
			table.Optional[col] = struct{}{}
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, malformed(source, err)
		}

		// Header is line 1, so data row i lives on line i+2
		row := len(table.Records)
		entity, err := parseEntity(record, positions, row, row+2, source)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, record)
		table.Entities = append(table.Entities, entity)
	}

	if len(table.Entities) == 0 {
		return nil, &contract.EmptyInputError{Source: source}
	}
	return table, nil
}

// indexHeader maps column names to positions and checks required columns.
func indexHeader(header []string, source string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, dup := positions[name]; dup {
			return nil, &contract.MalformedRowError{
				Source: source,
				Line:   1,
				Column: name,
				Value:  name,
				Cause:  errors.New("duplicate column in header"),
			}
		}
		positions[name] = i
	}

	for _, col := range requiredColumns {
		if _, ok := positions[col]; !ok {
			return nil, &contract.MissingColumnError{Column: col, Source: source}
		}
	}
	return positions, nil
}

// parseEntity builds a typed entity from one record.
func parseEntity(record []string, positions map[string]int, row, line int, source string) (schema.Pokemon, error) {
	cell := func(col string) string {
		return strings.TrimSpace(record[positions[col]])
	}
	bad := func(col string, cause error) error {
		return &contract.MalformedRowError{Source: source, Line: line, Column: col, Value: cell(col), Cause: cause}
	}

	entity := schema.Pokemon{
		Row:   row,
		Index: row + 1,
		Name:  cell(schema.ColName),
	}
	if entity.Name == "" {
		return entity, bad(schema.ColName, errors.New("empty identity"))
	}

	for i, col := range schema.StatColumns {
		v, err := strconv.Atoi(cell(col))
		if err != nil {
			return entity, bad(col, errors.New("stat must be an integer"))
		}
		if v < 0 {
			return entity, bad(col, errors.New("stat must not be negative"))
		}
		entity.Stats[i] = v
	}

	if _, ok := positions[schema.ColIndex]; ok {
		v, err := strconv.Atoi(cell(schema.ColIndex))
		if err != nil {
			return entity, bad(schema.ColIndex, errors.New("index must be an integer"))
		}
		entity.Index = v
	}
	if _, ok := positions[schema.ColType1]; ok {
		entity.Type1 = cell(schema.ColType1)
	}
	if _, ok := positions[schema.ColType2]; ok {
		entity.Type2 = cell(schema.ColType2)
	}
	if _, ok := positions[schema.ColGeneration]; ok {
		v, err := strconv.Atoi(cell(schema.ColGeneration))
		if err != nil {
			return entity, bad(schema.ColGeneration, errors.New("generation must be an integer"))
		}
		entity.Generation = v
	}
	if _, ok := positions[schema.ColLegendary]; ok {
		v, err := strconv.ParseBool(cell(schema.ColLegendary))
		if err != nil {
			return entity, bad(schema.ColLegendary, errors.New("legendary must be True or False"))
		}
		entity.Legendary = v
	}
	return entity, nil
}

// malformed converts csv parse failures into MalformedRowError.
func malformed(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &contract.MalformedRowError{Source: source, Line: pe.Line, Cause: pe.Err}
	}
	return &contract.MalformedRowError{Source: source, Cause: err}
}
