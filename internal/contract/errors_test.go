package contract

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"missing column", &MissingColumnError{Column: "Speed"}, ErrMissingColumn},
		{"empty input", &EmptyInputError{Source: "p.csv"}, ErrEmptyInput},
		{"malformed row", &MalformedRowError{Source: "p.csv", Line: 3}, ErrMalformedRow},
		{"unmapped cluster", &UnmappedClusterError{Cluster: 5}, ErrUnmappedCluster},
		{"persistence", &PersistenceError{Op: "rename", Path: "x"}, ErrPersistence},
		{"locked", &LockedError{Path: "x", Holder: "pid 1"}, ErrLocked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.kind)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrorKindsDoNotCrossMatch(t *testing.T) {
	err := &MissingColumnError{Column: "HP"}
	assert.NotErrorIs(t, err, ErrEmptyInput)
	assert.NotErrorIs(t, err, ErrPersistence)
}

func TestMissingColumnErrorMessage(t *testing.T) {
	assert.Equal(t, `missing required column "Speed"`, (&MissingColumnError{Column: "Speed"}).Error())
	assert.Equal(t, `missing required column "HP" in pokemon.csv`, (&MissingColumnError{Column: "HP", Source: "pokemon.csv"}).Error())
}

func TestPersistenceErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("commit: %w", &PersistenceError{Op: "write", Path: "/tmp/x", Cause: fs.ErrPermission})

	assert.ErrorIs(t, err, fs.ErrPermission)

	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "write", pe.Op)
	assert.Equal(t, "/tmp/x", pe.Path)
}

func TestMalformedRowErrorMessage(t *testing.T) {
	err := &MalformedRowError{Source: "p.csv", Line: 4, Column: "HP", Value: "abc", Cause: errors.New("bad int")}
	assert.Equal(t, `malformed row at p.csv:4 column "HP" value "abc": bad int`, err.Error())
}
