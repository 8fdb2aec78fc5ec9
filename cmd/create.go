package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbauerster/mpb/v7"
	"github.com/vbauerster/mpb/v7/decor"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"github.com/LINBIT/mkiso/internal/mkiso"
	"github.com/LINBIT/mkiso/pkg/isoinfo"
	"github.com/LINBIT/mkiso/pkg/overtime"
	"github.com/LINBIT/mkiso/pkg/progressmode"
)

func createCommand() *cobra.Command {
	var label string
	var publisher string
	var output string
	var verbose bool
	var adapter adapterRef
	var define string
	var jobs int
	var timeout time.Duration
	var verify bool
	progress := progressmode.Auto

	createCmd := &cobra.Command{
		Use:   "create source [source...] [-- extra_args...]",
		Short: "Create ISO images from directories",
		Long: `Create an ISO 9660 image from each source directory. The image is written
next to the directory with an .iso extension unless --output is given.
Arguments after "--" are passed to the tool before the source directory.`,
		Args: func(cmd *cobra.Command, args []string) error {
			sources, _ := splitSources(cmd, args)
			if len(sources) == 0 {
				return fmt.Errorf("requires at least one source directory")
			}
			if output != "" && len(sources) > 1 {
				return fmt.Errorf("--output can only be used with a single source")
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			sources, extra := splitSources(cmd, args)

			flags := cmd.Flags()
			if !flags.Changed("adapter") && !flags.Changed("define") {
				if err := adapter.Set(viper.GetString("iso.adapter")); err != nil {
					log.WithError(err).Fatal("invalid adapter in config")
				}
			}
			if !flags.Changed("publisher") {
				publisher = viper.GetString("iso.publisher")
			}
			if !flags.Changed("verbose-tool") {
				verbose = viper.GetBool("iso.verbose")
			}
			if !flags.Changed("timeout") {
				timeout = viper.GetDuration("time.timeout")
			}
			if !flags.Changed("progress") {
				progress = getDefaultProgressMode()
			}

			ctx, cancel := onInterruptWrap(context.Background())
			defer cancel()

			factory, err := resolveFactory(ctx, adapterRegistry(), adapter, define)
			if err != nil {
				log.Fatal(err)
			}

			b := &builder{
				factory:   factory,
				label:     label,
				publisher: publisher,
				output:    output,
				verbose:   verbose,
				extra:     extra,
				timeout:   timeout,
				grace:     viper.GetDuration("time.stop_grace"),
				verify:    verify,
				fs:        afero.NewOsFs(),
			}

			var p *mpb.Progress
			if progress.Enabled(term.IsTerminal(int(os.Stderr.Fd()))) {
				p = mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr))
				b.progress = p
			}

			if err := b.buildAll(ctx, sources, jobs); err != nil {
				if p != nil {
					p.Wait()
				}
				log.Fatal(err)
			}
			if p != nil {
				p.Wait()
			}
		},
	}

	createCmd.Flags().StringVarP(&label, "label", "L", "", "volume label of the image")
	createCmd.Flags().StringVarP(&publisher, "publisher", "p", "", "publisher recorded in the image")
	createCmd.Flags().StringVarP(&output, "output", "o", "", "path of the image (only with a single source); .iso is appended if missing")
	createCmd.Flags().BoolVarP(&verbose, "verbose-tool", "V", false, "ask the tool for verbose output")
	createCmd.Flags().VarP(&adapter, "adapter", "a", fmt.Sprintf("bundled adapter %v, registry adapter or path to an adapter definition file (default: platform default)", mkiso.Bundled()))
	createCmd.Flags().StringVarP(&define, "define", "d", "", `inline adapter definition, e.g. "command=xorriso,args=-as mkisofs -r,label=-V,output=-o"`)
	createCmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "number of images to build in parallel")
	createCmd.Flags().DurationVar(&timeout, "timeout", 0, "stop the tool if a single build takes longer than this (0 disables)")
	createCmd.Flags().Var(&progress, "progress", fmt.Sprintf("when to draw progress bars. [%s, %s, %s]", progressmode.Auto, progressmode.Always, progressmode.Never))
	createCmd.Flags().BoolVar(&verify, "verify", false, "read every image back and log its label and size")
	createCmd.MarkFlagsMutuallyExclusive("adapter", "define")
	_ = createCmd.RegisterFlagCompletionFunc("adapter", suggestAdapterNames)

	return createCmd
}

// splitSources separates the source directories from the arguments given
// after "--".
func splitSources(cmd *cobra.Command, args []string) ([]string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}
	return args[:dash], args[dash:]
}

// builder creates images with one set of options.
type builder struct {
	factory   mkiso.Factory
	label     string
	publisher string
	output    string
	verbose   bool
	extra     []string
	timeout   time.Duration
	grace     time.Duration
	verify    bool

	fs       afero.Fs
	progress *mpb.Progress
	spawn    *mkiso.SpawnOptions
	isoOpts  []mkiso.Option
}

// buildAll builds every source, at most jobs at a time, and reports all
// failures together.
func (b *builder) buildAll(ctx context.Context, sources []string, jobs int) error {
	var mu sync.Mutex
	var errs error

	var g errgroup.Group
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range sources {
		source := sources[i]
		g.Go(func() error {
			if err := b.build(ctx, source); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, fmt.Errorf("failed to create image from '%s': %w", source, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	return errs
}

func (b *builder) build(ctx context.Context, source string) error {
	// sources still queued after an interrupt are skipped
	if err := ctx.Err(); err != nil {
		return err
	}

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	opts := append([]mkiso.Option{mkiso.WithFs(b.fs)}, b.isoOpts...)
	iso, err := mkiso.New(source, opts...)
	if err != nil {
		return err
	}
	iso.Label(b.label).Publisher(b.publisher).Output(b.output)
	if b.verbose {
		iso.Verbose()
	}
	if b.factory != nil {
		iso.AdapterFactory(b.factory)
	}

	logger := log.WithField("source", source)
	bar := b.newLineBar(source)

	iso.On(mkiso.EventProgress, func(ev mkiso.Event) {
		if bar != nil {
			bar.Increment()
			logger.Debug(ev.Line)
			return
		}
		logger.Info(ev.Line)
	})
	iso.On(mkiso.EventStderr, func(ev mkiso.Event) {
		if bar != nil {
			bar.Increment()
			logger.Debug(ev.Line)
			return
		}
		logger.Warn(ev.Line)
	})
	iso.On(mkiso.EventError, func(ev mkiso.Event) {
		logger.WithError(ev.Err).Warn("tool reported an error")
	})

	proc, err := iso.Exec(ctx, b.extra, b.spawn)
	if err != nil {
		if bar != nil {
			bar.Abort(false)
		}
		return err
	}

	stopped := b.wait(ctx, proc, logger)
	waitErr := proc.Wait()

	if bar != nil {
		if stopped || waitErr != nil {
			bar.Abort(false)
		} else {
			bar.SetTotal(-1, true)
		}
	}

	if stopped {
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("'%s' failed: %w", proc, waitErr)
	}

	if b.verify {
		info, err := isoinfo.ReadFile(b.fs, iso.OutputPath())
		if err != nil {
			return fmt.Errorf("failed to verify %s: %w", iso.OutputPath(), err)
		}
		logger.WithField("label", info.Label).Infof("verified %s: %d entries", iso.OutputPath(), len(info.Entries))
	}

	logger.Infof("created %s", iso.OutputPath())
	return nil
}

// wait blocks until proc has exited. If ctx ends first, the tool gets
// SIGTERM and, after the grace period, SIGKILL. It reports whether the tool
// was stopped; a tool that exited on its own is never reported as stopped.
func (b *builder) wait(ctx context.Context, proc *mkiso.Process, logger *log.Entry) bool {
	select {
	case <-proc.Done():
		return false
	case <-ctx.Done():
	}

	select {
	case <-proc.Done():
		return false
	default:
	}

	graceCtx, graceCancel := overtime.WithOvertimeContext(ctx, b.grace)
	defer graceCancel()

	logger.Warnf("stopping %s: %v", proc, ctx.Err())
	_ = proc.Signal(unix.SIGTERM)
	select {
	case <-proc.Done():
	case <-graceCtx.Done():
		logger.Warnf("killing %s", proc)
		_ = proc.Kill()
		<-proc.Done()
	}
	return true
}

// newLineBar adds a bar counting the lines the tool prints, or returns nil
// when no bars are drawn.
func (b *builder) newLineBar(source string) *mpb.Bar {
	if b.progress == nil {
		return nil
	}

	name := filepath.Base(filepath.Clean(source))
	if len(name) > 24 {
		name = name[:24]
	}

	return b.progress.AddBar(
		0,
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
			decor.OnComplete(decor.Name("building", decor.WCSyncWidthR), "done"),
		),
		mpb.AppendDecorators(decor.CurrentNoUnit("%d lines")),
	)
}
