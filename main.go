package main

import (
	"context"
	"os"

	"github.com/kovetskiy/mark-diagram/util"
	"github.com/reconquest/pkg/log"
	"github.com/urfave/cli/v3"
)

const (
	version     = "1.0.0"
	usage       = "A tool for rendering diagram code blocks of markdown documents into images."
	description = `mark-diagram finds mermaid, d2 and graphviz code blocks annotated with file=<image> name=<name>, renders them and replaces each block with an image reference and its definition. The resulting document tree is written as mdast JSON.`
)

func main() {
	cmd := &cli.Command{
		Name:                  "mark-diagram",
		Usage:                 usage,
		Description:           description,
		Version:               version,
		Flags:                 util.Flags,
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Before:                util.CheckFlags,
		Action:                util.RunMarkDiagram,
	}

	if err := cmd.Run(context.TODO(), os.Args); err != nil {
		log.Fatal(err)
	}
}
