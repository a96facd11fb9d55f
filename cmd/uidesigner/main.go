/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"uidesigner/internal/crash"
	applog "uidesigner/internal/log"
	"uidesigner/internal/storage"
	"uidesigner/internal/version"
)

// errUsage marks a malformed command line; main exits with status 2.
var errUsage = errors.New("usage")

func usage(w io.Writer) {
	fmt.Fprintln(w, "UI Designer")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  uidesigner version|-v|--version                  Show version")
	fmt.Fprintln(w, "  uidesigner init <dir> <name> [<W>x<H>]           Create a new layout at <dir>")
	fmt.Fprintln(w, "  uidesigner open <dir>                            Print a summary of the layout")
	fmt.Fprintln(w, "  uidesigner place <dir> <kind> <x> <y> [<tab>]    Place a control centred on x,y (or at x,y inside tab page <tab>)")
	fmt.Fprintln(w, "  uidesigner move <dir> <name> <x> <y>             Move a control (parent-relative)")
	fmt.Fprintln(w, "  uidesigner resize <dir> <name> <w> <h>           Resize a control")
	fmt.Fprintln(w, "  uidesigner label <dir> <name> <text>             Set a control's caption")
	fmt.Fprintln(w, "  uidesigner remove <dir> <name>                   Remove a control and its children")
	fmt.Fprintln(w, "  uidesigner tab <dir> <tabbox> [<label>]          Add a page to a tab box")
	fmt.Fprintln(w, "  uidesigner find <dir> [<query>]                  Search controls by name or caption")
	fmt.Fprintln(w, "  uidesigner history <dir> [<limit>]               List saved revisions")
	fmt.Fprintln(w, "  uidesigner revert <dir> <revision>               Restore a saved revision")
	fmt.Fprintln(w, "  uidesigner export <dir> pdf|png|svg [<out>]      Export one mockup file")
	fmt.Fprintln(w, "  uidesigner export <dir> review|web               Export a preset set under exports/")
	fmt.Fprintln(w, "  uidesigner import-legacy <file>                  Merge a legacy settings file into the config")
	fmt.Fprintln(w, "  uidesigner publish <dir>                         Publish the layout to the shared library")
	fmt.Fprintln(w, "  uidesigner fetch <stable-id> <dir>               Fetch a published layout into <dir>")
	fmt.Fprintln(w, "  uidesigner serve [<addr>]                        Serve the library over HTTP")
	fmt.Fprintln(w, "  uidesigner token [<subject>] [<ttl>]             Print a library bearer token")
	fmt.Fprintln(w, "  uidesigner ui [<dir>]                            Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	l.Debug("start", slog.Int("args", len(os.Args)))

	c := &cli{out: os.Stdout, loadConfig: loadConfig}
	defer crash.RecoverWith(func() *storage.ProjectHandle {
		if c.doc == nil {
			return nil
		}
		return c.doc.PH
	})

	err := c.run(os.Args[1:])
	switch {
	case errors.Is(err, errUsage):
		fmt.Println("Error:", err)
		usage(os.Stdout)
		os.Exit(2)
	case err != nil:
		l.Error("command failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
