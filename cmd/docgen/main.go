// Package main generates API reference pages for the listkit packages.
// It runs gomarkdoc on each package and writes one markdown page per package
// under docs/api with a small front matter block.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/mod/modfile"

	"github.com/go-drift/listkit/pkg/errors"
)

// Package is a Go package to document.
type Package struct {
	Name     string
	Title    string
	Path     string
	Position int
}

// Packages to document, in sidebar order.
var packages = []Package{
	{Name: "smallarray", Title: "Small Array", Path: "pkg/smallarray", Position: 1},
	{Name: "listitem", Title: "List Items", Path: "pkg/listitem", Position: 2},
	{Name: "listview", Title: "List View", Path: "pkg/listview", Position: 3},
	{Name: "errors", Title: "Errors", Path: "pkg/errors", Position: 4},
}

func main() {
	out := flag.String("out", filepath.Join("docs", "api"), "output directory, relative to the module root")
	install := flag.Bool("install", false, "install gomarkdoc if it is not on PATH")
	flag.Parse()

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	if err := run(logger, *out, *install); err != nil {
		level.Error(logger).Log("msg", "docgen failed", "err", err)
		os.Exit(1)
	}
}

func run(logger log.Logger, out string, install bool) error {
	root, modPath, err := findModuleRoot()
	if err != nil {
		return err
	}
	level.Info(logger).Log("msg", "module root", "dir", root, "module", modPath)

	if err := ensureGomarkdoc(install); err != nil {
		return err
	}

	apiDir := filepath.Join(root, out)
	if err := os.MkdirAll(apiDir, 0755); err != nil {
		return err
	}
	for _, pkg := range packages {
		if _, err := os.Stat(filepath.Join(root, pkg.Path)); os.IsNotExist(err) {
			level.Warn(logger).Log("msg", "package not found, skipping", "package", pkg.Name)
			continue
		}
		level.Info(logger).Log("msg", "generating", "package", pkg.Name)
		if err := generatePackageDocs(root, modPath, pkg, apiDir); err != nil {
			return err
		}
	}
	level.Info(logger).Log("msg", "done", "dir", apiDir)
	return nil
}

// findModuleRoot walks up from the working directory to the nearest go.mod
// and returns its directory and module path.
func findModuleRoot() (string, string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", "", err
	}
	for {
		data, err := os.ReadFile(filepath.Join(dir, "go.mod"))
		if err == nil {
			return dir, modfile.ModulePath(data), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", &errors.KitError{Op: "docgen.findModuleRoot", Kind: errors.KindConfig, Err: fmt.Errorf("no go.mod above working directory"), Position: -1}
		}
		dir = parent
	}
}

func ensureGomarkdoc(install bool) error {
	if _, err := exec.LookPath("gomarkdoc"); err == nil {
		return nil
	}
	if !install {
		return &errors.KitError{Op: "docgen.ensureGomarkdoc", Kind: errors.KindConfig, Err: fmt.Errorf("gomarkdoc not on PATH (rerun with -install)"), Position: -1}
	}
	cmd := exec.Command("go", "install", "github.com/princjef/gomarkdoc/cmd/gomarkdoc@latest")
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func generatePackageDocs(root, modPath string, pkg Package, apiDir string) error {
	cmd := exec.Command("gomarkdoc", "./"+pkg.Path)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return &errors.KitError{Op: "docgen.generate", Kind: errors.KindRender, Err: fmt.Errorf("%s: %w: %s", pkg.Name, err, bytes.TrimSpace(stderr.Bytes())), Position: -1}
	}

	page := frontMatter(pkg, modPath) + processMarkdown(stdout.String())
	return os.WriteFile(filepath.Join(apiDir, pkg.Name+".md"), []byte(page), 0644)
}
