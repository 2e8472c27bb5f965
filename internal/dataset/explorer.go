package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/huangsam/pokestats/internal/contract"
	"github.com/huangsam/pokestats/schema"
)

// posColumn tracks each dataframe row back to its LabeledRow.
const posColumn = "_pos"

// Explorer filters and sorts labeled rows through a dataframe.
type Explorer struct {
	rows []schema.LabeledRow
	df   dataframe.DataFrame
}

// NewExplorer builds the dataframe view over the given rows.
func NewExplorer(rows []schema.LabeledRow) (*Explorer, error) {
	e := &Explorer{rows: rows}
	if len(rows) == 0 {
		return e, nil
	}

	header := []string{
		posColumn, schema.ColName, schema.ColType1, schema.ColType2,
		schema.ColGeneration, schema.ColLegendary, schema.ColProfile, schema.ColCluster, schema.ColTotal,
	}
	header = append(header, schema.StatColumns...)

	types := map[string]series.Type{
		posColumn:            series.Int,
		schema.ColName:       series.String,
		schema.ColType1:      series.String,
		schema.ColType2:      series.String,
		schema.ColGeneration: series.Int,
		schema.ColLegendary:  series.String,
		schema.ColProfile:    series.String,
		schema.ColCluster:    series.Int,
		schema.ColTotal:      series.Int,
	}
	for _, col := range schema.StatColumns {
		types[col] = series.Int
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	for i, r := range rows {
		rec := []string{
			strconv.Itoa(i),
			r.Name,
			r.Type1,
			r.Type2,
			strconv.Itoa(r.Generation),
			strconv.FormatBool(r.Legendary),
			r.Profile,
			strconv.Itoa(r.Cluster),
			strconv.Itoa(r.Stats.Total()),
		}
		for _, v := range r.Stats {
			rec = append(rec, strconv.Itoa(v))
		}
		records = append(records, rec)
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("cannot build dataframe: %w", df.Err)
	}
	e.df = df
	return e, nil
}

// Apply narrows the rows with the given filters, sorts them and keeps at most limit rows.
// Filters combine with AND; the type filter matches either type slot.
func (e *Explorer) Apply(f contract.Filters, limit int) ([]schema.LabeledRow, error) {
	if len(e.rows) == 0 {
		return nil, nil
	}
	df := e.df

	if f.Type != "" {
		df = df.Filter(
			dataframe.F{Colname: schema.ColType1, Comparator: series.CompFunc, Comparando: equalFold(f.Type)},
			dataframe.F{Colname: schema.ColType2, Comparator: series.CompFunc, Comparando: equalFold(f.Type)},
		)
	}
	if f.Generation > 0 {
		df = df.Filter(dataframe.F{Colname: schema.ColGeneration, Comparator: series.Eq, Comparando: f.Generation})
	}
	if f.Legendary != nil {
		df = df.Filter(dataframe.F{Colname: schema.ColLegendary, Comparator: series.Eq, Comparando: strconv.FormatBool(*f.Legendary)})
	}
	if f.Profile != "" {
		df = df.Filter(dataframe.F{Colname: schema.ColProfile, Comparator: series.CompFunc, Comparando: equalFold(f.Profile)})
	}
	if df.Err != nil {
		return nil, fmt.Errorf("cannot filter rows: %w", df.Err)
	}

	if f.SortBy != "" && df.Nrow() > 1 {
		order := dataframe.RevSort(f.SortBy)
		if f.Ascending {
			order = dataframe.Sort(f.SortBy)
		}
		df = df.Arrange(order)
		if df.Err != nil {
			return nil, fmt.Errorf("cannot sort rows by %s: %w", f.SortBy, df.Err)
		}
	}

	if limit > 0 && df.Nrow() > limit {
		keep := make([]int, limit)
		for i := range keep {
			keep[i] = i
		}
		df = df.Subset(keep)
		if df.Err != nil {
			return nil, fmt.Errorf("cannot limit rows: %w", df.Err)
		}
	}

	if df.Nrow() == 0 {
		return []schema.LabeledRow{}, nil
	}
	positions, err := df.Col(posColumn).Int()
	if err != nil {
		return nil, fmt.Errorf("cannot read row positions: %w", err)
	}
	out := make([]schema.LabeledRow, len(positions))
	for i, pos := range positions {
		out[i] = e.rows[pos]
	}
	return out, nil
}

// Describe returns summary statistics (count, mean, std, quartiles) for the
// six stats and the total, as string records with a header row.
func (e *Explorer) Describe() ([][]string, error) {
	if len(e.rows) == 0 {
		return nil, &contract.EmptyInputError{Source: "labeled table"}
	}
	cols := append([]string{schema.ColTotal}, schema.StatColumns...)
	desc := e.df.Select(cols).Describe()
	if desc.Err != nil {
		return nil, fmt.Errorf("cannot describe rows: %w", desc.Err)
	}
	return desc.Records(), nil
}

// equalFold builds a case-insensitive string comparator for dataframe filters.
func equalFold(want string) func(series.Element) bool {
	return func(el series.Element) bool {
		return strings.EqualFold(el.String(), want)
	}
}
