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

// insert
package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// What evaluating a cell found out. Evaluation only reads the tree, so a whole
// wave of it can run at once; the verdicts are applied afterwards, in order
const (
	VERDICT_NONE         = iota // nothing needed (cell skipped or has vertices)
	VERDICT_PRUNED_POINT        // target point is not in the cell
	VERDICT_INFEASIBLE          // no vertex at all
	VERDICT_DEGENERATE          // too few vertices for a full-dimensional cell
	VERDICT_VERTICES            // vertices computed
	VERDICT_SPLIT               // LP says the hyperplane crosses the cell
	VERDICT_UNSPLIT             // LP says it doesn't (or couldn't tell)
)

type cellEval struct {
	verdict  int
	vertices [][]float64
	refs     *RefList // tightened ref list, nil when not tightened
	mlog     *MiniLogger
}

// Insert offers the hyperplane ref points to to the tree. Every leaf cell it
// crosses gets two children, −ref on the left and +ref on the right. So does
// every leaf whose vertices are computed on the way (lazy strategy).
//
// On an empty tree, bounding becomes the tree's initial constraints and
// initialVertices the root's vertices; later calls ignore both. Solver and
// enumeration failures only ever prune cells. Errors returned are store
// misses, configuration errors (before anything was changed) and ctx
// cancellation
func (t *Tree) Insert(ctx context.Context, ref ConstraintRef, bounding []Hyperplane,
	initialVertices [][]float64) error {
	if ref == 0 {
		return ErrInvalidRef
	}
	h, err := Resolve(ctx, t.store, ref, SignConventionComplement)
	if err != nil {
		return errors.Wrapf(err, "insert %d", ref)
	}
	if t.root == nil {
		err = t.insertRoot(ctx, ref, bounding, initialVertices)
	} else {
		err = t.insertInto(ctx, ref, h)
	}
	if err != nil {
		return errors.Wrapf(err, "insert %d", ref)
	}
	t.inserted++
	t.metrics.Inserted(t.cells)
	return nil
}

func (t *Tree) insertRoot(ctx context.Context, ref ConstraintRef, bounding []Hyperplane,
	initialVertices [][]float64) error {
	if len(bounding) == 0 {
		return ErrEmptyBounding
	}
	for i, b := range bounding {
		if len(b.Coef) != t.dim {
			return errors.Wrapf(ErrDimensionMismatch, "bounding constraint %d has %d coefficients, want %d",
				i, len(b.Coef), t.dim)
		}
	}
	for i, v := range initialVertices {
		if len(v) != t.dim {
			return errors.Wrapf(ErrDimensionMismatch, "initial vertex %d has %d coordinates, want %d",
				i, len(v), t.dim)
		}
	}
	t.initial = make([]Hyperplane, len(bounding))
	for i, b := range bounding {
		t.initial[i] = Hyperplane{
			Coef:     append([]float64(nil), b.Coef...),
			Constant: b.Constant,
		}
	}
	root := &Cell{Ref: ref}
	if len(initialVertices) > 0 && t.opts.Strategy != StrategyFeasibility {
		root.Vertices = make([][]float64, len(initialVertices))
		for i, v := range initialVertices {
			root.Vertices[i] = append([]float64(nil), v...)
		}
	}
	t.root = root
	t.cells = 1
	t.split(root, ref)
	t.log.VerboseFields(1, t.fields(ref, 0), "root created, initial constraints: %d", len(t.initial))
	if t.opts.Strategy == StrategyEagerVertices {
		return t.prepare(ctx, []*Cell{root.Left, root.Right})
	}
	return nil
}

func (t *Tree) insertInto(ctx context.Context, ref ConstraintRef, h Hyperplane) error {
	queue := CreateWorkQueue(t.root)
	for wave := 0; !queue.Empty(); wave++ {
		tasks := queue.DequeueWave()
		cells := make([]*Cell, len(tasks))
		for i, task := range tasks {
			cells[i] = task.cell
		}
		evals, err := t.evaluateAll(ctx, cells, &h)
		if err != nil {
			return err
		}
		var created []*Cell
		for i, task := range tasks {
			created = t.apply(queue, task, evals[i], ref, h, created)
		}
		t.log.Push(0, "insert %d: wave %d, %d cells, %d new", ref, wave, len(tasks), len(created))
		if len(created) > 0 && t.opts.Strategy == StrategyEagerVertices {
			if err := t.prepare(ctx, created); err != nil {
				return err
			}
		}
	}
	t.log.Push(1, "insert %d: %d cells visited", ref, queue.Visited())
	return nil
}

// split gives a leaf its two children
func (t *Tree) split(c *Cell, ref ConstraintRef) {
	c.Left = &Cell{Ref: -ref, Refs: c.Refs.Push(-ref), depth: c.depth + 1}
	c.Right = &Cell{Ref: ref, Refs: c.Refs.Push(ref), depth: c.depth + 1}
	t.cells += 2
}

// needsEvaluation: under the feasibility strategy every live cell needs an LP
// test; otherwise only cells whose vertices are not yet known need work
func (t *Tree) needsEvaluation(c *Cell, h *Hyperplane) bool {
	if c.Skip {
		return false
	}
	if t.opts.Strategy == StrategyFeasibility {
		return h != nil
	}
	return c.Vertices == nil
}

// evaluateAll runs evaluate for the cells that need it on up to Workers
// goroutines. h is nil when only vertices are wanted
func (t *Tree) evaluateAll(ctx context.Context, cells []*Cell, h *Hyperplane) ([]cellEval, error) {
	evals := make([]cellEval, len(cells))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(t.opts.Workers))
	for i, c := range cells {
		if !t.needsEvaluation(c, h) {
			continue
		}
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i, c := i, c
		g.Go(func() error {
			defer sem.Release(1)
			ev, err := t.evaluate(gctx, c, h)
			evals[i] = ev
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return evals, nil
}

// evaluate does the expensive part for one cell without touching the tree
func (t *Tree) evaluate(ctx context.Context, c *Cell, h *Hyperplane) (cellEval, error) {
	ev := cellEval{mlog: CreateMiniLogger(t.log)}
	fields := t.fields(c.Ref, c.depth)
	merged, err := mergeTimed(ctx, t.store, c.Refs, t.initial, SignConventionComplement, t.metrics)
	if err != nil {
		return ev, err
	}
	if t.opts.Target != nil && !t.oracle.ContainsPoint(merged, t.opts.Target) {
		ev.verdict = VERDICT_PRUNED_POINT
		ev.mlog.VerboseFields(2, fields, "target point outside cell")
		return ev, nil
	}
	if t.opts.Strategy == StrategyFeasibility {
		split := t.oracle.IsSplit(ctx, merged, *h)
		if err := ctx.Err(); err != nil {
			return ev, err
		}
		if split {
			ev.verdict = VERDICT_SPLIT
		} else {
			ev.verdict = VERDICT_UNSPLIT
		}
		return ev, nil
	}
	verts := t.enum.EnumerateVertices(ctx, merged)
	if err := ctx.Err(); err != nil {
		return ev, err
	}
	switch {
	case len(verts) == 0:
		ev.verdict = VERDICT_INFEASIBLE
		ev.mlog.VerboseFields(2, fields, "no vertices (%d constraints)", len(merged))
		return ev, nil
	case t.degenerate(len(verts)):
		ev.verdict = VERDICT_DEGENERATE
		ev.mlog.VerboseFields(2, fields, "degenerate, only %d vertices", len(verts))
		return ev, nil
	}
	ev.verdict = VERDICT_VERTICES
	ev.vertices = verts
	if t.opts.TightenConstraints {
		tight, err := TightRefs(ctx, t.store, c.Refs, verts, t.dim, t.opts.Tolerance)
		if err != nil {
			return ev, err
		}
		if tight != c.Refs {
			ev.refs = tight
			ev.mlog.VerboseFields(2, fields, "tightened refs %d -> %d", c.Refs.Len(), tight.Len())
		}
	}
	ev.mlog.VerboseFields(3, fields, "%d vertices", len(verts))
	return ev, nil
}

// A full-dimensional polytope in n dimensions has at least n+1 vertices, and
// a cell in the plane needs three
func (t *Tree) degenerate(count int) bool {
	limit := t.dim
	if limit < 2 {
		limit = 2
	}
	return count <= limit
}

// applyVertices stores what evaluate found for a cell without vertices. False
// means the cell got skipped
func (t *Tree) applyVertices(c *Cell, ev cellEval) bool {
	switch ev.verdict {
	case VERDICT_PRUNED_POINT:
		c.markSkip(false)
		t.metrics.CellOutcome(OUTCOME_PRUNED_POINT)
		return false
	case VERDICT_INFEASIBLE:
		c.markSkip(true)
		t.metrics.CellOutcome(OUTCOME_INFEASIBLE)
		return false
	case VERDICT_DEGENERATE:
		c.markSkip(true)
		t.metrics.CellOutcome(OUTCOME_DEGENERATE)
		return false
	case VERDICT_VERTICES:
		if t.dedup.Redundant(t.dedup.Observe(ev.vertices)) {
			c.markSkip(false)
			t.metrics.CellOutcome(OUTCOME_DUPLICATE)
			t.log.VerboseFields(2, t.fields(c.Ref, c.depth), "vertex set seen before, skipped")
			return false
		}
		c.Vertices = ev.vertices
		if ev.refs != nil {
			c.Refs = ev.refs
		}
	}
	return !c.Skip
}

// apply is the serial half of a wave: acts on one evaluated cell and returns
// created extended with any children made
func (t *Tree) apply(queue *WorkQueue, task WorkTask, ev cellEval, ref ConstraintRef,
	h Hyperplane, created []*Cell) []*Cell {
	c := task.cell
	t.log.Merge(ev.mlog, "")
	if c.Skip {
		t.metrics.CellOutcome(OUTCOME_SKIPPED)
		return created
	}
	var crosses bool
	if t.opts.Strategy == StrategyFeasibility {
		switch ev.verdict {
		case VERDICT_PRUNED_POINT:
			c.markSkip(false)
			t.metrics.CellOutcome(OUTCOME_PRUNED_POINT)
			return created
		case VERDICT_SPLIT:
			crosses = true
		}
	} else {
		if c.Vertices == nil {
			if !t.applyVertices(c, ev) {
				return created
			}
			// A leaf reached for the first time is split without looking
			// at h. Halves h doesn't really cut are pruned when next visited
			if c.IsLeaf() {
				return t.splitLeaf(task, ref, created)
			}
		}
		start := time.Now()
		crosses = Separates(h, c.Vertices, t.opts.Tolerance)
		t.metrics.Since(OP_CLASSIFY, start)
	}
	if !crosses {
		t.metrics.CellOutcome(OUTCOME_UNAFFECTED)
		return created
	}
	if c.IsLeaf() {
		return t.splitLeaf(task, ref, created)
	}
	queue.Enqueue(task.num, c.Left, c.Right)
	t.metrics.CellOutcome(OUTCOME_DESCEND)
	return created
}

func (t *Tree) splitLeaf(task WorkTask, ref ConstraintRef, created []*Cell) []*Cell {
	c := task.cell
	t.split(c, ref)
	t.metrics.CellOutcome(OUTCOME_SPLIT)
	t.log.VerboseFields(3, t.fields(ref, c.depth), "split cell %d (task %d, parent task %d)",
		c.Ref, task.num, task.parentNum)
	return append(created, c.Left, c.Right)
}

// prepare computes vertices of freshly created cells (eager strategy)
func (t *Tree) prepare(ctx context.Context, cells []*Cell) error {
	evals, err := t.evaluateAll(ctx, cells, nil)
	if err != nil {
		return err
	}
	for i, c := range cells {
		t.log.Merge(evals[i].mlog, "")
		if t.needsEvaluation(c, nil) {
			t.applyVertices(c, evals[i])
		}
	}
	return nil
}

func (t *Tree) fields(ref ConstraintRef, depth int) logrus.Fields {
	return logrus.Fields{"run": t.runID, "ref": ref, "depth": depth}
}
