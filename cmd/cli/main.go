package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "article-digest",
		Usage: "send and inspect the daily article review digest",
		Commands: []*cli.Command{
			{
				Name:   "send",
				Usage:  "send today's digest",
				Action: sendAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "audience",
						Value: "owner",
						Usage: "who receives the digest: owner or subscribers",
					},
				},
			},
			{
				Name:   "preview",
				Usage:  "render today's digest from the workbook without sending it",
				Action: previewAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the HTML to a file instead of stdout"},
				},
			},
			{
				Name:   "render",
				Usage:  "render a digest from a CSV export of the Next sheet",
				Action: renderAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "csv", Required: true, Usage: "CSV export of the Next sheet, header row included"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write the HTML to a file instead of stdout"},
				},
			},
			{
				Name:   "parse",
				Usage:  "show how the rows of a CSV export of the Next sheet are parsed",
				Action: parseAction,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "csv", Required: true, Usage: "CSV export of the Next sheet, header row included"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
