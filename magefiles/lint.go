//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
)

type Lint mg.Namespace

// Vet runs go vet.
func (Lint) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Fmt fails when a file is not gofmt clean.
func (Lint) Fmt() error {
	out, err := executeCmd("gofmt", withArgs("-l", "cmd", "pkg", "magefiles"))
	if err != nil {
		return err
	}
	if files := strings.TrimSpace(out); files != "" {
		return fmt.Errorf("not gofmt clean:\n%s", files)
	}
	return nil
}

// All runs every lint target.
func (Lint) All() {
	mg.SerialDeps(Lint.Fmt, Lint.Vet)
}
