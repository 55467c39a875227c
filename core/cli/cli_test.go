package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) error {
	t.Helper()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestDiffCmd_RunFuncReceivesFlags(t *testing.T) {
	dir := t.TempDir()

	var got DiffOptions
	cmd := NewDiffCmd(func(ctx context.Context, opts DiffOptions) error {
		got = opts
		return nil
	})

	err := execute(t, cmd,
		"--package", "design-system",
		"--old", dir, "--new", dir,
		"--old-version", "5.4.1", "--new-version", "6.0.0")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got.Package != "design-system" || got.OldVersion != "5.4.1" || got.NewVersion != "6.0.0" {
		t.Errorf("options = %+v", got)
	}
}

func TestDiffCmd_RejectsMissingDir(t *testing.T) {
	cmd := NewDiffCmd(func(ctx context.Context, opts DiffOptions) error {
		t.Error("run func should not be called")
		return nil
	})
	err := execute(t, cmd, "--package", "p", "--old", "/no/such/dir", "--new", "/no/such/dir")
	if err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestResolveCmd_RequiresManifestOrRepo(t *testing.T) {
	cmd := NewResolveCmd(func(ctx context.Context, opts ResolveOptions) error { return nil })
	if err := execute(t, cmd); err == nil {
		t.Fatal("expected error when neither --manifest nor --repo is given")
	}
}

func TestPlanCmd_FlagValidation(t *testing.T) {
	dir := t.TempDir()

	t.Run("old and new must pair", func(t *testing.T) {
		cmd := NewPlanCmd(func(ctx context.Context, opts PlanOptions) error { return nil })
		err := execute(t, cmd, "--package", "p", "--to", "6.0.0", "--repo", dir, "--old", dir)
		if err == nil {
			t.Fatal("expected error for --old without --new")
		}
	})

	t.Run("defaults corpus timeout", func(t *testing.T) {
		var got PlanOptions
		cmd := NewPlanCmd(func(ctx context.Context, opts PlanOptions) error {
			got = opts
			return nil
		})
		if err := execute(t, cmd, "--package", "p", "--to", "6.0.0", "--repo", dir); err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if got.CorpusTimeout != 30*time.Second {
			t.Errorf("corpus timeout = %v, want 30s", got.CorpusTimeout)
		}
	})
}

func TestApplyCmd_RequiresCatalog(t *testing.T) {
	dir := t.TempDir()
	cmd := NewApplyCmd(func(ctx context.Context, opts ApplyOptions) error { return nil })
	err := execute(t, cmd, "--package", "p", "--to", "6.0.0", "--repo", dir)
	if err == nil {
		t.Fatal("expected error when --catalog is missing")
	}
}
