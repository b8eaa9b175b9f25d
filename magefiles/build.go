//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// CLI builds the brushwork binary into bin/.
func (Build) CLI() error {
	if err := os.MkdirAll("bin", 0o755); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "-o", "bin/brushwork", "./cmd/brushwork"), withEnv("CGO_ENABLED", "0"))
	return err
}

// Room builds the CLI and exports the example room to bin/room.stl.
func (Build) Room() error {
	mg.Deps(Build.CLI)
	_, err := executeCmd("bin/brushwork", withArgs("-stl", "bin/room.stl", "examples/room.bw"), withStream())
	return err
}
