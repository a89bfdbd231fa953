// Copyright (C) 2025-2026, VigilantDoomer
//
// This file is part of VITree program.
//
// VITree is free software: you can redistribute it
// and/or modify it under the terms of GNU General Public License
// as published by the Free Software Foundation, either version 2 of
// the License, or (at your option) any later version.
//
// VITree is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with VITree.  If not, see <https://www.gnu.org/licenses/>.

// -- This file is where the program entry is.
// VITree builds a binary partition of a box domain by an arrangement of
// hyperplanes, one hyperplane at a time. Every cell remembers the signed
// constraints bounding it and, depending on the strategy, the vertices of
// its region so that most cells can be classified without solving an LP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCommand(DefaultConfig()).ExecuteContext(ctx)
	stop()
	if err != nil {
		Log.Error("%s\n", err)
		Log.Sync()
		os.Exit(1)
	}
	Log.Sync()
}
