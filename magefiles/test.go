//go:build mage

package main

import "github.com/magefile/mage/mg"

type Test mg.Namespace

// All runs every package's tests.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "./..."), withStream())
	return err
}

// Race runs the tests with the race detector.
func (Test) Race() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream(), withEnv("CGO_ENABLED", "1"))
	return err
}
