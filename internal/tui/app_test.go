package tui_test

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // Dot import is idiomatic for Ginkgo
	. "github.com/onsi/gomega"    //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/mirror-tree/internal/syncengine"
	"github.com/joe/mirror-tree/internal/tui"
)

var _ = Describe("EventBridge", func() {
	var bridge *tui.EventBridge

	BeforeEach(func() {
		bridge = tui.NewEventBridge()
	})

	It("delivers emitted events to subscribers", func() {
		bridge.Emit(syncengine.CopyStarted{Total: 3})

		var msg tea.Msg
		Eventually(bridge.Subscribe()).Should(Receive(&msg))

		eventMsg, ok := msg.(tui.EngineEventMsg)
		Expect(ok).To(BeTrue())
		Expect(eventMsg.Event).To(Equal(syncengine.CopyStarted{Total: 3}))
	})

	It("drops events rather than blocking when the buffer is full", func() {
		// The engine must never stall on a slow or absent consumer.
		for range 500 {
			bridge.Emit(syncengine.FileCopied{Path: "a.txt"})
		}
	})

	It("ignores emissions after Close", func() {
		bridge.Close()
		bridge.Emit(syncengine.PlanStarted{})
	})

	It("tolerates Close while another goroutine is emitting", func() {
		// The engine goroutine keeps emitting after the UI loop exits
		// and closes the bridge; that overlap must not panic or race.
		done := make(chan struct{})

		go func() {
			defer close(done)

			for range 1000 {
				bridge.Emit(syncengine.FileCopied{Path: "a.txt"})
			}
		}()

		bridge.Close()
		Eventually(done).Should(BeClosed())
	})

	It("is safe to Close twice", func() {
		bridge.Close()
		bridge.Close()
	})

	It("returns nil from ListenCmd once closed and drained", func() {
		bridge.Close()
		Expect(bridge.ListenCmd()()).To(BeNil())
	})
})

var _ = Describe("Model", func() {
	var (
		bridge    *tui.EventBridge
		model     *tui.Model
		cancelled bool
	)

	BeforeEach(func() {
		bridge = tui.NewEventBridge()
		cancelled = false
		model = tui.NewModel(bridge, func() { cancelled = true })
	})

	applyEvent := func(event syncengine.Event) {
		updated, _ := model.Update(tui.EngineEventMsg{Event: event})
		model = updated.(*tui.Model)
	}

	It("tracks copy progress in the view", func() {
		applyEvent(syncengine.CopyStarted{Total: 5})
		applyEvent(syncengine.FileCopied{Path: "photos/a.jpg", Completed: 2, Total: 5})

		view := model.View()
		Expect(view).To(ContainSubstring("copying"))
		Expect(view).To(ContainSubstring("2/5"))
		Expect(view).To(ContainSubstring("photos/a.jpg"))
	})

	It("advances through phases as events arrive", func() {
		applyEvent(syncengine.EnumerateStarted{Target: "input"})
		Expect(model.View()).To(ContainSubstring("enumerating input"))

		applyEvent(syncengine.PlanStarted{})
		Expect(model.View()).To(ContainSubstring("planning"))

		applyEvent(syncengine.CleanStarted{Total: 1})
		Expect(model.View()).To(ContainSubstring("cleaning stale files"))

		applyEvent(syncengine.PruneStarted{})
		Expect(model.View()).To(ContainSubstring("pruning empty directories"))
	})

	It("shows item failures", func() {
		applyEvent(syncengine.ItemFailed{Phase: "copy", Path: "a.txt", Err: errors.New("boom")})
		Expect(model.View()).To(ContainSubstring("1 item(s) failed"))
	})

	It("captures the summary from RunComplete", func() {
		summary := &syncengine.Summary{Copied: 7}
		applyEvent(syncengine.RunComplete{Summary: summary})

		Expect(model.Summary()).To(BeIdenticalTo(summary))
		Expect(model.View()).To(ContainSubstring("done"))
	})

	It("quits and records the error on EngineDoneMsg", func() {
		runErr := errors.New("run failed")
		updated, cmd := model.Update(tui.EngineDoneMsg{Err: runErr})
		model = updated.(*tui.Model)

		Expect(cmd).NotTo(BeNil())
		Expect(model.Err()).To(MatchError(runErr))
	})

	It("cancels the run on ctrl+c", func() {
		_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		Expect(cancelled).To(BeTrue())
		Expect(cmd).NotTo(BeNil())
	})
})
