package plan

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conflictKinds(t *testing.T, err error) []ConflictKind {
	t.Helper()

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr, "Error should be a *ConflictError")

	kinds := make([]ConflictKind, 0, len(cerr.Conflicts))
	for _, c := range cerr.Conflicts {
		kinds = append(kinds, c.Kind)
	}

	return kinds
}

// TestValidate_Success tests batches that are safe to schedule.
func TestValidate_Success(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, []string{"/w/dir", "/w/target"}, "/w/a", "/w/b", "/w/c", "/w/old")

	tests := []struct {
		name    string
		actions []Action
	}{
		{"empty batch", nil},
		{"chain", []Action{{Source: "/w/a", Destination: "/w/b"}, {Source: "/w/b", Destination: "/w/new"}}},
		{"swap", []Action{{Source: "/w/a", Destination: "/w/b"}, {Source: "/w/b", Destination: "/w/a"}}},
		{"overwrite file", []Action{{Source: "/w/a", Destination: "/w/old"}}},
		{"directory onto vacated file", []Action{{Source: "/w/dir", Destination: "/w/c"}, {Source: "/w/c", Destination: "/w/c2"}}},
		{"into existing directory", []Action{{Source: "/w/a", Destination: "/w/target/a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewValidator(fsh, false, false)
			require.NoError(t, v.Validate(tt.actions), "Validate() should not fail")
		})
	}
}

// TestValidate_SharedPairs tests that every offending pair is reported.
func TestValidate_SharedPairs(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, nil, "/w/a", "/w/b", "/w/c")
	v := NewValidator(fsh, false, false)

	actions := []Action{
		{Source: "/w/a", Destination: "/w/x"},
		{Source: "/w/b", Destination: "/w/x"},
		{Source: "/w/c", Destination: "/w/x"},
		{Source: "/w/a", Destination: "/w/y"},
	}

	err := v.Validate(actions)
	require.ErrorIs(t, err, ErrConflict, "Validate() should fail with ErrConflict")

	var cerr *ConflictError
	require.ErrorAs(t, err, &cerr)

	assert.Equal(t, []Conflict{
		{Kind: ConflictSharedSource, Actions: []Action{actions[0], actions[3]}},
		{Kind: ConflictSharedDestination, Actions: []Action{actions[0], actions[1]}},
		{Kind: ConflictSharedDestination, Actions: []Action{actions[0], actions[2]}},
		{Kind: ConflictSharedDestination, Actions: []Action{actions[1], actions[2]}},
	}, cerr.Conflicts, "Every conflicting pair should be reported")
}

// TestValidate_Fail tests rejection of unsafe single actions.
func TestValidate_Fail(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, []string{"/w/dir", "/w/dir2/inner", "/w/full/a"}, "/w/a", "/w/file", "/w/dir/f")

	tests := []struct {
		name      string
		actions   []Action
		noClobber bool
		parents   bool
		kinds     []ConflictKind
	}{
		{
			name:    "directory onto file",
			actions: []Action{{Source: "/w/dir", Destination: "/w/file"}},
			kinds:   []ConflictKind{ConflictDirectoryOntoFile},
		},
		{
			name:    "onto existing directory",
			actions: []Action{{Source: "/w/a", Destination: "/w/full/a"}},
			kinds:   []ConflictKind{ConflictOntoDirectory},
		},
		{
			name:    "into itself",
			actions: []Action{{Source: "/w/dir", Destination: "/w/dir/sub"}},
			kinds:   []ConflictKind{ConflictIntoItself},
		},
		{
			name:    "nested source",
			actions: []Action{{Source: "/w/dir", Destination: "/w/moved"}, {Source: "/w/dir/f", Destination: "/w/f"}},
			kinds:   []ConflictKind{ConflictNestedSource},
		},
		{
			name:    "destination in other source",
			actions: []Action{{Source: "/w/dir", Destination: "/w/moved"}, {Source: "/w/a", Destination: "/w/dir/a"}},
			kinds:   []ConflictKind{ConflictDestinationInSource},
		},
		{
			name:    "missing parent",
			actions: []Action{{Source: "/w/a", Destination: "/w/nowhere/a"}},
			kinds:   []ConflictKind{ConflictMissingParent},
		},
		{
			name:    "parent below a file",
			actions: []Action{{Source: "/w/a", Destination: "/w/file/deeper/a"}},
			parents: true,
			kinds:   []ConflictKind{ConflictMissingParent},
		},
		{
			name:      "no clobber",
			actions:   []Action{{Source: "/w/a", Destination: "/w/file"}},
			noClobber: true,
			kinds:     []ConflictKind{ConflictExistingDestination},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v := NewValidator(fsh, tt.parents, tt.noClobber)

			err := v.Validate(tt.actions)
			require.ErrorIs(t, err, ErrConflict, "Validate() should fail with ErrConflict")
			assert.Equal(t, tt.kinds, conflictKinds(t, err), "Conflict kinds should match")
		})
	}
}

// TestValidate_CreateParents tests that missing parents are allowed when they
// may be created.
func TestValidate_CreateParents(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, nil, "/w/a")
	v := NewValidator(fsh, true, false)

	require.NoError(t, v.Validate([]Action{{Source: "/w/a", Destination: "/w/x/y/z/a"}}))
}

// TestValidate_NoClobberVacated tests that vacated destinations are not
// clobbered.
func TestValidate_NoClobberVacated(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, nil, "/w/a", "/w/b")
	v := NewValidator(fsh, false, true)

	require.NoError(t, v.Validate([]Action{
		{Source: "/w/a", Destination: "/w/b"},
		{Source: "/w/b", Destination: "/w/a"},
	}))
}

// TestValidate_AllCollected tests that conflicts of several kinds are collected together.
func TestValidate_AllCollected(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, []string{"/w/dir"}, "/w/a", "/w/b", "/w/file")
	v := NewValidator(fsh, false, false)

	err := v.Validate([]Action{
		{Source: "/w/a", Destination: "/w/x"},
		{Source: "/w/b", Destination: "/w/x"},
		{Source: "/w/dir", Destination: "/w/file"},
		{Source: "/w/file", Destination: "/w/missing/file"},
	})

	assert.Equal(t, []ConflictKind{
		ConflictSharedDestination,
		ConflictMissingParent,
	}, conflictKinds(t, err), "Every conflict should be collected")
}

type failingLstatFs struct {
	fsProvider
}

func (failingLstatFs) Lstat(name string) (os.FileInfo, error) {
	return nil, &os.PathError{Op: "lstat", Path: name, Err: errors.New("io failure")}
}

// TestValidate_InspectFailure tests that unexpected filesystem errors abort validation.
func TestValidate_InspectFailure(t *testing.T) {
	t.Parallel()

	fsh := newTestFs(t, nil, "/w/a")
	v := NewValidator(failingLstatFs{fsh}, false, false)

	err := v.Validate([]Action{{Source: "/w/a", Destination: "/w/b"}})
	require.ErrorIs(t, err, ErrInspectFailed, "Validate() should fail with ErrInspectFailed")
	require.NotErrorIs(t, err, ErrConflict)
}
