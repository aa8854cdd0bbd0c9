// SPDX-License-Identifier: MIT

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/parmatrix/config"
	"github.com/katalvlaran/parmatrix/logging"
	"github.com/katalvlaran/parmatrix/matrix"
	"github.com/katalvlaran/parmatrix/matrixio"
)

const replPrompt = "> "

var errQuit = errors.New("quit")

// replCommand is one REPL verb.
type replCommand struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, args []string) error
}

// repl is the interactive host loop: a matrix registry plus one backend.
type repl struct {
	rt   *runtime
	reg  *matrixio.Registry
	out  io.Writer
	dir  string
	idle atomic.Int64 // pool max idle, ns
	log  logrus.FieldLogger

	commands map[string]replCommand
}

func newREPL(rt *runtime, out io.Writer, dir string, idle time.Duration, log logrus.FieldLogger) *repl {
	r := &repl{rt: rt, reg: matrixio.NewRegistry(matrixio.MaxMatrices), out: out, dir: dir, log: log}
	r.idle.Store(int64(idle))
	r.commands = r.commandTable()

	return r
}

// setIdle changes the age-out threshold, e.g. after a config reload.
func (r *repl) setIdle(d time.Duration) { r.idle.Store(int64(d)) }

// ageOut retires idle pool workers; it runs once per loop iteration.
func (r *repl) ageOut() {
	if r.rt.pool == nil {
		return
	}
	if n := r.rt.pool.AgeOut(time.Duration(r.idle.Load())); n > 0 {
		r.log.WithField("evicted", n).Info("idle workers retired")
	}
}

// Run reads commands from in until EOF, "exit" or ctx ends.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	sc := bufio.NewScanner(in)
	fmt.Fprint(r.out, replPrompt)
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.ageOut()

		fields := strings.Fields(sc.Text())
		if len(fields) > 0 {
			err := r.exec(ctx, fields)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(r.out, "error: %v\n", err)
			}
		}
		fmt.Fprint(r.out, replPrompt)
	}

	return sc.Err()
}

func (r *repl) exec(ctx context.Context, fields []string) error {
	name, args := strings.ToLower(fields[0]), fields[1:]
	c, ok := r.commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q (try help)", name)
	}
	if len(args) < c.minArgs {
		return fmt.Errorf("usage: %s", c.usage)
	}

	return c.run(ctx, args)
}

// commandTable binds every verb to r.
func (r *repl) commandTable() map[string]replCommand {
	cmds := map[string]replCommand{
		"help":    {"help", 0, r.help},
		"new":     {"new <name> <rows> <cols> <v11 v12 ...>", 3, r.create},
		"show":    {"show <name>", 1, r.show},
		"list":    {"list", 0, r.list},
		"del":     {"del <name>", 1, r.remove},
		"set":     {"set <name> <row> <col> <value>", 4, r.set},
		"load":    {"load <file>", 1, r.load},
		"loadall": {"loadall [dir]", 0, r.loadAll},
		"save":    {"save <name> <file>", 2, r.save},
		"saveall": {"saveall [dir]", 0, r.saveAll},
		"add":     {"add <dst> <A> <B>", 3, r.binary("add")},
		"sub":     {"sub <dst> <A> <B>", 3, r.binary("sub")},
		"mul":     {"mul <dst> <A> <B>", 3, r.binary("mul")},
		"det":     {"det <A>", 1, r.det},
		"eigen":   {"eigen <A> [k]", 1, r.eigen},
		"stats":   {"stats", 0, r.stats},
		"exit":    {"exit", 0, func(context.Context, []string) error { return errQuit }},
	}
	cmds["quit"] = cmds["exit"]

	return cmds
}

func (r *repl) help(context.Context, []string) error {
	names := make([]string, 0, len(r.commands))
	for n := range r.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(r.out, "  %s\n", r.commands[n].usage)
	}

	return nil
}

func (r *repl) create(_ context.Context, args []string) error {
	rows, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	cols, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("cols: %w", err)
	}
	m, err := matrix.NewNamedDense(args[0], rows, cols)
	if err != nil {
		return err
	}
	vals := args[3:]
	if len(vals) != rows*cols {
		return fmt.Errorf("want %d values, got %d", rows*cols, len(vals))
	}
	for k, s := range vals {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("value %d: %w", k+1, err)
		}
		if err = m.Set(k/cols, k%cols, v); err != nil {
			return err
		}
	}

	return r.reg.Put(m)
}

func (r *repl) show(_ context.Context, args []string) error {
	m, err := r.reg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(r.out, m.String())

	return nil
}

func (r *repl) list(context.Context, []string) error {
	if r.reg.Len() == 0 {
		fmt.Fprintln(r.out, "no matrices")
		return nil
	}
	for _, m := range r.reg.All() {
		fmt.Fprint(r.out, m.String())
	}

	return nil
}

func (r *repl) remove(_ context.Context, args []string) error {
	return r.reg.Delete(args[0])
}

func (r *repl) set(_ context.Context, args []string) error {
	m, err := r.reg.Get(args[0])
	if err != nil {
		return err
	}
	i, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("row: %w", err)
	}
	j, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("col: %w", err)
	}
	v, err := strconv.ParseFloat(args[3], 64)
	if err != nil {
		return fmt.Errorf("value: %w", err)
	}

	return m.Set(i, j, v)
}

// putAll registers ms, reporting each failure without stopping.
func (r *repl) putAll(ms []*matrix.Dense) {
	added := 0
	for _, m := range ms {
		if err := r.reg.Put(m); err != nil {
			fmt.Fprintf(r.out, "skip %s: %v\n", m.Name(), err)
			continue
		}
		added++
	}
	fmt.Fprintf(r.out, "loaded %d matrices\n", added)
}

func (r *repl) load(_ context.Context, args []string) error {
	ms, err := matrixio.ReadFile(args[0])
	if err != nil {
		return err
	}
	r.putAll(ms)

	return nil
}

func (r *repl) loadAll(_ context.Context, args []string) error {
	dir := r.dir
	if len(args) > 0 {
		dir = args[0]
	}
	ms, err := matrixio.LoadDir(dir)
	if err != nil {
		if len(ms) == 0 {
			return err
		}
		fmt.Fprintf(r.out, "warning: %v\n", err)
	}
	r.putAll(ms)

	return nil
}

func (r *repl) save(_ context.Context, args []string) error {
	m, err := r.reg.Get(args[0])
	if err != nil {
		return err
	}

	return matrixio.WriteFile(args[1], m)
}

func (r *repl) saveAll(_ context.Context, args []string) error {
	dir := r.dir
	if len(args) > 0 {
		dir = args[0]
	}
	if err := matrixio.SaveDir(dir, r.reg.All()); err != nil {
		return err
	}
	fmt.Fprintf(r.out, "saved %d matrices to %s\n", r.reg.Len(), dir)

	return nil
}

func (r *repl) operands(names ...string) ([]*matrix.Dense, error) {
	out := make([]*matrix.Dense, len(names))
	for i, n := range names {
		m, err := r.reg.Get(n)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}

	return out, nil
}

// binary runs verb and stores the result under dst, replacing any matrix of
// that name.
func (r *repl) binary(verb string) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		ops, err := r.operands(args[1], args[2])
		if err != nil {
			return err
		}
		res, err := binaryOps[verb](ctx, r.rt.engine, ops[0], ops[1])
		if err != nil {
			return err
		}
		if err = res.SetName(args[0]); err != nil {
			return err
		}
		if err = r.reg.Replace(res); err != nil {
			return err
		}
		fmt.Fprint(r.out, res.String())

		return nil
	}
}

func (r *repl) det(ctx context.Context, args []string) error {
	ops, err := r.operands(args[0])
	if err != nil {
		return err
	}
	d, err := r.rt.engine.Determinant(ctx, ops[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "det(%s) = %g\n", args[0], d)

	return nil
}

func (r *repl) eigen(ctx context.Context, args []string) error {
	ops, err := r.operands(args[0])
	if err != nil {
		return err
	}
	k := 1
	if len(args) > 1 {
		if k, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("k: %w", err)
		}
	}
	res, err := r.rt.engine.Eigen(ctx, ops[0], k)
	if err != nil {
		return err
	}
	printEigen(r.out, res)

	return nil
}

func (r *repl) stats(context.Context, []string) error {
	fmt.Fprintf(r.out, "backend=%s matrices=%d/%d", r.rt.name, r.reg.Len(), matrixio.MaxMatrices)
	if r.rt.pool != nil {
		s := r.rt.pool.Stats()
		fmt.Fprintf(r.out, " size=%d alive=%d available=%d busy=%d", s.Size, s.Alive, s.Available, s.Busy)
	}
	fmt.Fprintf(r.out, " dropped=%d\n", r.rt.status.Dropped())

	return nil
}

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive session: enter, load, modify and operate on named matrices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRuntime(cmd, func(ctx context.Context, rt *runtime) error {
			r := newREPL(rt, cmd.OutOrStdout(), appCfg.MatrixDir, appCfg.Pool.MaxIdle, logger)
			if cfgFile != "" {
				config.Watch(vp, func(c config.Config, err error) {
					if err != nil {
						logger.WithError(err).Warn("config reload rejected")
						return
					}
					r.setIdle(c.Pool.MaxIdle)
					if lvl, err := logging.ParseLevel(c.Log.Level); err == nil {
						logger.SetLevel(lvl)
					}
					logger.Info("config reloaded")
				})
			}

			return r.Run(ctx, os.Stdin)
		})
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
