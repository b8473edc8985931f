//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/inamate/vizscene/internal/engine"
	"github.com/inamate/vizscene/internal/render"
	"github.com/inamate/vizscene/internal/render/recorder"
	"github.com/inamate/vizscene/internal/sample"
	"github.com/inamate/vizscene/internal/scene"
)

var (
	ctrl       *engine.Controller
	painter    *render.Painter
	onComplete js.Value
)

func main() {
	ctrl = engine.NewController(engine.WithCompletionHook(func(c engine.Completion) {
		if onComplete.Type() == js.TypeFunction {
			onComplete.Invoke(c.SceneID, c.Generation)
		}
	}))
	painter = render.NewPainter()

	// Create the engine API object
	vizEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	vizEngine.Set("loadScene", js.FuncOf(loadScene))
	vizEngine.Set("loadSample", js.FuncOf(loadSample))
	vizEngine.Set("play", js.FuncOf(play))
	vizEngine.Set("pause", js.FuncOf(pause))
	vizEngine.Set("togglePlay", js.FuncOf(togglePlay))
	vizEngine.Set("seek", js.FuncOf(seek))
	vizEngine.Set("restart", js.FuncOf(restart))
	vizEngine.Set("tick", js.FuncOf(tick))
	vizEngine.Set("onComplete", js.FuncOf(setOnComplete))

	// --- Queries (frontend ← engine) ---
	vizEngine.Set("render", js.FuncOf(renderFrame))
	vizEngine.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	vizEngine.Set("getGeneration", js.FuncOf(getGeneration))
	vizEngine.Set("getSamples", js.FuncOf(getSamples))

	// Register on global scope
	js.Global().Set("vizEngine", vizEngine)

	// Signal that WASM is ready
	js.Global().Set("vizWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) any {
	if err != nil {
		out := map[string]any{"error": err.Error()}
		var verr *scene.ValidationError
		if errors.As(err, &verr) {
			fields := make([]any, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = f.String()
			}
			out["fields"] = fields
		}
		return js.ValueOf(out)
	}
	return js.ValueOf(map[string]any{"ok": true})
}

// --- Command Handlers ---

func loadScene(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return js.ValueOf(map[string]any{"error": "missing scene JSON"})
	}

	s, err := scene.Decode([]byte(args[0].String()), scene.FormatJSON)
	if err != nil {
		return result(err)
	}
	return result(ctrl.LoadScene(s))
}

func loadSample(this js.Value, args []js.Value) any {
	name := sample.Default
	if len(args) > 0 && args[0].Type() == js.TypeString {
		name = args[0].String()
	}

	smp, ok := sample.Get(name)
	if !ok {
		return js.ValueOf(map[string]any{"error": "unknown sample " + name})
	}
	return result(ctrl.LoadScene(smp.Scene))
}

func play(this js.Value, args []js.Value) any {
	ctrl.Play()
	return nil
}

func pause(this js.Value, args []js.Value) any {
	ctrl.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) any {
	ctrl.TogglePlay()
	return nil
}

func seek(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	ctrl.Seek(args[0].Float())
	return nil
}

func restart(this js.Value, args []js.Value) any {
	ctrl.Restart()
	return nil
}

// tick is called from requestAnimationFrame with the generation read when
// the frame was scheduled and the elapsed milliseconds.
func tick(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(false)
	}
	gen := uint64(args[0].Int())
	return js.ValueOf(ctrl.Advance(gen, args[1].Float()))
}

func setOnComplete(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		onComplete = js.Undefined()
		return nil
	}
	onComplete = args[0]
	return nil
}

// --- Query Handlers ---

// renderFrame returns the current frame as a JSON draw-command list for the
// page's canvas to replay.
func renderFrame(this js.Value, args []js.Value) any {
	if ctrl.Scene() == nil {
		return js.ValueOf("[]")
	}

	rec := recorder.New()
	if err := painter.Paint(rec, ctrl.Frame().Layers); err != nil {
		js.Global().Get("console").Call("warn", err.Error())
	}
	data, err := rec.JSON()
	if err != nil {
		return js.ValueOf("[]")
	}
	return js.ValueOf(string(data))
}

func getPlaybackState(this js.Value, args []js.Value) any {
	data, err := json.Marshal(ctrl.Snapshot())
	if err != nil {
		return js.ValueOf("{}")
	}
	return js.ValueOf(string(data))
}

func getGeneration(this js.Value, args []js.Value) any {
	return js.ValueOf(float64(ctrl.Generation()))
}

func getSamples(this js.Value, args []js.Value) any {
	names := sample.Names()
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return js.ValueOf(out)
}
