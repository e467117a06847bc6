package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/vango-dev/dnd/internal/config"
	"github.com/vango-dev/dnd/internal/demo"
	"github.com/vango-dev/dnd/internal/errors"
	"github.com/vango-dev/dnd/pkg/dnd"
	"github.com/vango-dev/dnd/pkg/dom"
	"github.com/vango-dev/dnd/pkg/protocol"
	"github.com/vango-dev/dnd/pkg/sched"
	"github.com/vango-dev/dnd/pkg/scope"
)

type simulateOptions struct {
	card   int
	effect string
	handle bool
	locked bool
}

func simulateCmd() *cobra.Command {
	var (
		configPath string
		opts       simulateOptions
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Drag a demo card in-process and print the patches",
		Long: `Drag a demo card in-process and print the patches a client would get.

The drop effect decides the target: move drops on the trash zone, copy on
the copy zone, and none ends the drag without a drop.

Examples:
  dndd simulate
  dndd simulate --card=2 --effect=copy
  dndd simulate --handle --effect=none`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runSimulate(cmd.OutOrStdout(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to dnd.json")
	cmd.Flags().IntVar(&opts.card, "card", 0, "Index of the card to drag")
	cmd.Flags().StringVarP(&opts.effect, "effect", "e", dnd.EffectMove, "Drop effect: move, copy, link or none")
	cmd.Flags().BoolVar(&opts.handle, "handle", false, "Start the drag on the card's handle")
	cmd.Flags().BoolVar(&opts.locked, "locked", false, "Lock the board before dragging")

	return cmd
}

// simulation replays one drag against the demo board.
type simulation struct {
	out     io.Writer
	heading lipgloss.Style
	dim     lipgloss.Style
	doc     *dom.Document
	scope   *scope.Scope
	queue   *sched.Queue
	surface *dnd.Surface
	seq     uint64
}

func runSimulate(out io.Writer, cfg *config.Config, opts simulateOptions) error {
	if opts.card < 0 || opts.card >= len(demo.Titles) {
		return errors.New("E140").
			WithDetail("--card must be between 0 and " + strconv.Itoa(len(demo.Titles)-1))
	}
	switch opts.effect {
	case dnd.EffectMove, dnd.EffectCopy, dnd.EffectLink, dnd.EffectNone:
	default:
		return errors.New("E140").
			WithDetail("unknown drop effect " + strconv.Quote(opts.effect)).
			WithSuggestion("Use move, copy, link or none")
	}

	r := lipgloss.NewRenderer(out)
	sim := &simulation{
		out:     out,
		heading: r.NewStyle().Bold(true),
		dim:     r.NewStyle().Faint(true),
		doc:     dom.NewDocument(),
		scope:   scope.New(),
		queue:   sched.NewQueue(),
	}
	sim.surface = dnd.NewSurface(sim.queue, dnd.WithConfig(cfg))
	board := demo.Build(sim.doc, sim.scope, sim.surface)
	sim.scope.Set("locked", opts.locked)
	if err := sim.turn("mount"); err != nil {
		return err
	}

	card := board.Cards[opts.card]
	origin := card
	if opts.handle {
		if opts.card != 0 {
			return errors.New("E140").WithDetail("only card 0 has a handle")
		}
		origin = board.Handle
	}

	dt := dom.NewDataTransfer()
	dt.AllowSetDragImage = true
	start := dom.NewEvent(dom.EventDragStart, origin, dt)
	dom.Dispatch(start)
	if !start.PropagationStopped() {
		fmt.Fprintf(out, "dragstart ignored: card %d is disabled\n", opts.card)
		return sim.turn("dragstart")
	}
	fmt.Fprintf(out, "payload %s=%s effectAllowed=%s\n",
		sim.surface.PayloadFormat(), dt.GetData(sim.surface.PayloadFormat()), dt.EffectAllowed)
	if err := sim.turn("dragstart"); err != nil {
		return err
	}

	if opts.effect != dnd.EffectNone {
		zone := board.Trash
		if opts.effect == dnd.EffectCopy {
			zone = board.Copies
		}
		dom.Dispatch(dom.NewEvent(dom.EventDragOver, zone, dt))
		dt.DropEffect = opts.effect
		dom.Dispatch(dom.NewEvent(dom.EventDrop, zone, dt))
		if err := sim.turn("drop"); err != nil {
			return err
		}
	}

	dom.Dispatch(dom.NewEvent(dom.EventDragEnd, card, dt))
	if err := sim.turn("dragend"); err != nil {
		return err
	}

	last, _ := sim.scope.Get("lastEffect")
	color := lipgloss.Color("3")
	if last == dnd.EffectMove || last == dnd.EffectCopy {
		color = lipgloss.Color("2")
	}
	line := fmt.Sprintf("outcome: dropEffect=%v hidden=%v", last, card.HasAttr("hidden"))
	fmt.Fprintln(out, r.NewStyle().Foreground(color).Render(line))
	return nil
}

// turn runs deferred work, digests and prints the frame a client would
// receive for each pass.
func (sim *simulation) turn(label string) error {
	for pass := 0; ; pass++ {
		if err := sim.scope.Digest(); err != nil {
			return err
		}
		if err := sim.print(label, pass); err != nil {
			return err
		}
		if sim.queue.Len() == 0 {
			return nil
		}
		sim.queue.Flush()
	}
}

func (sim *simulation) print(label string, pass int) error {
	patches := protocol.PatchesFromMutations(sim.doc.Drain())
	if len(patches) == 0 {
		return nil
	}
	sim.seq++
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: sim.seq, Patches: patches})
	frame, err := protocol.NewFrame(protocol.FramePatches, payload).Encode()
	if err != nil {
		return err
	}

	name := label
	if pass > 0 {
		name += " (deferred)"
	}
	fmt.Fprintf(sim.out, "%s %s\n", sim.heading.Render(name+":"),
		sim.dim.Render(fmt.Sprintf("frame #%d, %d patches, %d bytes", sim.seq, len(patches), len(frame))))
	for _, p := range patches {
		switch p.Op {
		case protocol.PatchSetAttr, protocol.PatchSetDragImage:
			fmt.Fprintf(sim.out, "  %-12s %-4s %s=%q\n", p.Op, p.HID, p.Key, p.Value)
		case protocol.PatchRemoveAttr:
			fmt.Fprintf(sim.out, "  %-12s %-4s %s\n", p.Op, p.HID, p.Key)
		default:
			fmt.Fprintf(sim.out, "  %-12s %-4s %s\n", p.Op, p.HID, p.Value)
		}
	}
	return nil
}
