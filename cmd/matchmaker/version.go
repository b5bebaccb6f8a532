package main

import (
	"context"
	"fmt"

	"github.com/a-h/matchmaker"
)

type VersionCommand struct {
}

func (c VersionCommand) Run(ctx context.Context) (err error) {
	fmt.Println(matchmaker.Version)
	return nil
}
