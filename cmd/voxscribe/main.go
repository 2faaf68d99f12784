// Command voxscribe transcribes audio from a URL, a local file, or the
// microphone, and prints the transcript as text, SRT, WebVTT, or JSON.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/voxscribe/voxscribe"
	"github.com/voxscribe/voxscribe/internal/capture"
	"github.com/voxscribe/voxscribe/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default: ~/.config/voxscribe/config.yaml)")
		format     = flag.String("format", "", "output format: text, srt, vtt, json")
		output     = flag.String("output", "", "write output to file instead of stdout")
		modelID    = flag.String("model", "", "whisper model to use (see -list-models)")
		modelFile  = flag.String("model-file", "", "path to a custom ggml model file")
		modelSHA   = flag.String("model-sha256", "", "expected checksum for -model-file")
		language   = flag.String("language", "", `language code (e.g. "en", "de") or "auto"`)
		translate  = flag.Bool("translate", false, "translate to English")
		wordTS     = flag.Bool("word-timestamps", false, "enable word-level timestamps")
		beamSize   = flag.Int("beam", 0, "beam search size (0 = greedy)")
		threads    = flag.Int("threads", 0, "engine threads (0 = auto)")
		temp       = flag.Float64("temperature", 0, "sampling temperature")
		noGPU      = flag.Bool("no-gpu", false, "disable GPU acceleration")
		noVAD      = flag.Bool("no-vad", false, "disable voice activity detection")
		cacheDir   = flag.String("cache-dir", "", "model cache directory")
		dcOffset   = flag.Bool("dc-offset", false, "enable DC offset removal")
		normalize  = flag.Bool("normalize", false, "enable peak normalization")
		trim       = flag.Bool("trim-silence", false, "enable silence trimming")
		listModels = flag.Bool("list-models", false, "list available models and exit")
		listLangs  = flag.Bool("list-languages", false, "list supported languages and exit")
		download   = flag.String("download-model", "", "download a model without transcribing")
		mic        = flag.Bool("mic", false, "record from the microphone instead of a file or URL")
		logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatalf("config: %v", err)
	}
	applyFlags(cfg, *format, *modelID, *language, *cacheDir, *logLevel, *noGPU)
	if err := cfg.Validate(); err != nil {
		fatalf("config: %v", err)
	}

	setupLogging(cfg.LogLevel)

	if *listLangs {
		printLanguages()
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := voxscribe.NewPipeline(voxscribe.Config{CacheDir: cfg.CacheDir})
	if err != nil {
		fatalf("%v", err)
	}

	if *listModels {
		printModels(pipeline.Models())
		return
	}

	opts, err := buildOptions(cfg, *modelFile, *modelSHA, *translate, *wordTS,
		*beamSize, *threads, float32(*temp), *noGPU, *noVAD, *dcOffset, *normalize, *trim)
	if err != nil {
		fatalf("%v", err)
	}

	if *download != "" {
		if err := pipeline.Prefetch(ctx, *download); err != nil {
			fatalf("%v", err)
		}
		return
	}

	src, cleanup, err := resolveSource(ctx, flag.Arg(0), *mic)
	if err != nil {
		fatalf("%v", err)
	}
	defer cleanup()

	start := time.Now()
	transcript, err := pipeline.Run(ctx, src, opts)
	if err != nil {
		if voxscribe.IsCanceled(err) {
			fmt.Fprintln(os.Stderr, "canceled")
			os.Exit(130)
		}
		fatalf("%v", err)
	}
	slog.Info("transcription complete",
		"segments", len(transcript.Segments),
		"language", transcript.Language,
		"elapsed", time.Since(start).Round(time.Millisecond))

	rendered, err := render(transcript, cfg.Format)
	if err != nil {
		fatalf("%v", err)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(rendered), 0o644); err != nil {
			fatalf("writing %s: %v", *output, err)
		}
		return
	}
	fmt.Println(rendered)
}

// resolveSource maps the positional argument (or mic mode) to a Source.
// The cleanup func removes any temp recording.
func resolveSource(ctx context.Context, input string, mic bool) (voxscribe.Source, func(), error) {
	noop := func() {}

	if mic {
		path, err := recordToTempWAV(ctx)
		if err != nil {
			return voxscribe.Source{}, noop, err
		}
		return voxscribe.FromFile(path), func() { os.Remove(path) }, nil
	}

	if input == "" {
		return voxscribe.Source{}, noop, errors.New("no input: pass a URL or file path, or use -mic (see -h)")
	}
	if strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://") {
		return voxscribe.FromURL(input), noop, nil
	}
	return voxscribe.FromFile(input), noop, nil
}

// recordToTempWAV captures microphone audio until the user presses Enter
// (or the context ends), then writes it to a temp WAV file.
func recordToTempWAV(ctx context.Context) (string, error) {
	rec, err := capture.NewRecorder()
	if err != nil {
		return "", err
	}
	defer rec.Close()

	recCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		bufio.NewReader(os.Stdin).ReadString('\n')
		stop()
	}()

	fmt.Fprintln(os.Stderr, "Recording... press Enter to stop.")
	samples, err := rec.Record(recCtx)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		// Outer cancellation (SIGINT) aborts the run rather than transcribing
		// whatever was captured so far.
		return "", ctx.Err()
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("voxscribe-mic-%d.wav", os.Getpid()))
	if err := capture.WriteWAV(path, samples, capture.SampleRate); err != nil {
		return "", err
	}
	slog.Info("captured audio", "seconds", float64(len(samples))/capture.SampleRate, "path", path)
	return path, nil
}

func buildOptions(cfg *config.Config, modelFile, modelSHA string, translate, wordTS bool,
	beam, threads int, temp float32, noGPU, noVAD, dcOffset, normalize, trim bool) (voxscribe.Options, error) {

	b := voxscribe.NewOptions().
		Language(cfg.Language).
		Translate(translate).
		WordTimestamps(wordTS).
		BeamSize(beam).
		Threads(threads).
		VAD(!noVAD)

	if modelFile != "" {
		b.ModelFile(modelFile, modelSHA)
	} else {
		b.Model(cfg.Model)
	}
	if temp > 0 {
		b.Temperature(temp)
	}
	if noGPU {
		b.GPU(false)
	} else if cfg.GPU {
		b.GPU(true)
	}

	proc := voxscribe.DefaultAudioProcessing()
	proc.RemoveDCOffset = dcOffset || cfg.Audio.RemoveDCOffset
	proc.Normalize = normalize || cfg.Audio.Normalize
	proc.TrimSilence = trim || cfg.Audio.TrimSilence
	b.Processing(proc)

	return b.Build()
}

func render(t *voxscribe.Transcript, format string) (string, error) {
	switch format {
	case "srt":
		return t.SRT(), nil
	case "vtt":
		return t.VTT(), nil
	case "json":
		return t.JSONPretty()
	default:
		return t.Text(), nil
	}
}

func printModels(models []voxscribe.ModelInfo) {
	fmt.Printf("%-16s %-10s %s\n", "MODEL", "SIZE", "STATUS")
	for _, m := range models {
		status := "-"
		if m.Cached {
			status = "cached"
		}
		if m.Custom {
			status = "custom"
		}
		fmt.Printf("%-16s %-10s %s\n", m.ID, m.SizeLabel, status)
	}
}

func printLanguages() {
	fmt.Printf("%-6s %s\n", "CODE", "LANGUAGE")
	for _, l := range voxscribe.SupportedLanguages() {
		fmt.Printf("%-6s %s\n", l.Code, l.Name)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	defaultPath := config.DefaultConfigPath()
	if _, err := os.Stat(defaultPath); err == nil {
		cfg, err := config.Load(defaultPath)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", defaultPath, err)
		}
		return cfg, nil
	}
	return config.Default(), nil
}

// applyFlags lets explicit flags override config file values.
func applyFlags(cfg *config.Config, format, model, language, cacheDir, logLevel string, noGPU bool) {
	if format != "" {
		cfg.Format = format
	}
	if model != "" {
		cfg.Model = model
	}
	if language != "" {
		cfg.Language = language
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if noGPU {
		cfg.GPU = false
	}
}

func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "voxscribe: "+format+"\n", args...)
	os.Exit(1)
}
