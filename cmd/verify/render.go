package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	verifier "github.com/unlimitedverifier/free-email-verifier"
	"github.com/unlimitedverifier/free-email-verifier/internal/parse"
)

const banner = `
  _   _       _ _           _ _           _
 | | | |_ __ | (_)_ __ ___ (_) |_ ___  __| |
 | | | | '_ \| | | '_ ` + "`" + ` _ \| | __/ _ \/ _` + "`" + ` |
 | |_| | | | | | | | | | | | | ||  __/ (_| |
  \___/|_| |_|_|_|_| |_| |_|_|\__\___|\__,_|

   __     __        _  __ _
   \ \   / /__ _ __(_)/ _(_) ___ _ __
    \ \ / / _ \ '__| | |_| |/ _ \ '__|
     \ V /  __/ |  | |  _| |  __/ |
      \_/ \___|_|  |_|_| |_|\___|_|

   Open Source Email Verifier - Stage 1
   https://unlimitedverifier.com
`

func printBanner(w io.Writer, rateLimit string, helo string) {
	fmt.Fprint(w, banner+"\n")
	fmt.Fprintf(w, "  Version: %s\n", version)
	fmt.Fprintf(w, "  Rate limit: 1 email per %s\n", rateLimit)
	fmt.Fprintf(w, "  HELO hostname: %s\n\n", helo)
}

func mark(ok bool) string {
	if ok {
		return color.GreenString("✓")
	}
	return color.RedString("✗")
}

func status(deliverable bool) string {
	if deliverable {
		return color.GreenString("✓ DELIVERABLE")
	}
	return color.RedString("✗ UNDELIVERABLE")
}

// renderTable writes a human readable report of result.
func renderTable(w io.Writer, result verifier.Result) {
	domain := result.Domain
	if domain == "" {
		domain = "N/A"
	} else if u := parse.DisplayDomain(domain); !strings.EqualFold(u, domain) {
		domain = fmt.Sprintf("%s (%s)", domain, u)
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Results for: %s", result.Email)
	t.AppendRow(table.Row{"Syntax Valid", mark(result.ValidSyntax)})
	t.AppendRow(table.Row{"Domain", domain})
	t.AppendRow(table.Row{"MX Records", fmt.Sprintf("%d found", len(result.MXRecords))})

	if smtp := result.SMTPCheck; smtp != nil {
		t.AppendSeparator()
		t.AppendRow(table.Row{"SMTP Server", smtp.MXHost})
		t.AppendRow(table.Row{"  Connected", mark(smtp.Connected)})
		t.AppendRow(table.Row{"  HELO", mark(smtp.HeloOK)})
		t.AppendRow(table.Row{"  MAIL FROM", mark(smtp.MailFromOK)})
		t.AppendRow(table.Row{"  RCPT TO", mark(smtp.RcptToOK)})
		if smtp.Error != "" {
			t.AppendRow(table.Row{"  Error", smtp.Error})
		}
	}

	t.AppendSeparator()
	t.AppendRow(table.Row{"Status", status(result.Deliverable)})
	t.Render()
	fmt.Fprintln(w)
}

func renderJSON(w io.Writer, result verifier.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
