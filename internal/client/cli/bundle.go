package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/prolens/internal/client/services"
	"github.com/dmitrijs2005/prolens/internal/common"
	"github.com/dmitrijs2005/prolens/internal/filex"
	"github.com/dmitrijs2005/prolens/internal/launcher"
)

func (a *App) export(ctx context.Context, args []string) error {
	kind := services.BundleBackup
	if len(args) > 0 {
		kind = services.BundleKind(args[0])
	}
	if kind != services.BundleSync && kind != services.BundleBackup {
		return errors.New("usage: export [sync|backup]")
	}

	res, err := a.bundles.Export(ctx, kind)
	if err != nil {
		return err
	}

	dir, err := filex.EnsureDir(a.config.ExportDir)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, res.FileName)
	if err := filex.WriteFileAtomic(path, res.Data, 0o600); err != nil {
		return err
	}

	a.printf("Saved %s (%s)\n", path, common.FormatSize(res.Size))
	if res.Warn {
		a.printf("Warning: bundles this large are slow to import on other devices\n")
	}
	if a.materials.Backend() == services.BackendCloud {
		a.printf("Materials live in the cloud and are not included\n")
	}
	return nil
}

func (a *App) importBundle(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: import <bundle.json>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if int64(len(data)) > common.BundleWarnThreshold {
		a.printf("Warning: %s is %s, reading it may take a while\n", args[0], common.FormatSize(int64(len(data))))
	}

	ok, err := Confirm(a.in, "Importing replaces all local materials and the settings in the bundle. Continue?", a.out)
	if err != nil || !ok {
		return err
	}

	report, err := a.bundles.Import(ctx, data)
	if err != nil {
		return err
	}

	if a.materials.Backend() == services.BackendLocal {
		if err := a.cache.Reload(ctx); err != nil {
			return fmt.Errorf("imported, but failed to reload materials: %w", err)
		}
	}

	restored := "no settings"
	if len(report.Flags) > 0 {
		restored = strings.Join(report.Flags, ", ")
	}
	a.printf("Imported %d materials; restored %s\n", report.Materials, restored)
	return nil
}

func (a *App) launcher(_ context.Context, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	} else {
		dir, err := filex.EnsureDir(a.config.ExportDir)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, launcher.FileName)
	}

	var buf bytes.Buffer
	if err := launcher.Write(&buf, a.config.LauncherURL); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	a.printf("Launcher written to %s\n", path)
	return nil
}
