// main package for the vvcore-client, a command-line front end over the
// native voicevox core for local synthesis and inspection.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/book-expert/logger"

	"github.com/voicekit/vvcore/internal/audio"
	"github.com/voicekit/vvcore/internal/synth"
)

// Flag descriptions.
const (
	flagTextDesc    = "Text to convert to speech"
	flagOutputDesc  = "Output file path (.wav)"
	flagSpeakerDesc = "Numeric style ID of the voice to use"
	flagLibraryDesc = "Path to the voicevox core shared library"
	flagRuntimeDesc = "Path to a runtime library to preload (optional)"
	flagDictDesc    = "Path to the OpenJTalk dictionary directory (optional)"
	flagGPUDesc     = "Use GPU inference"
	flagThreadsDesc = "CPU inference thread count (0 lets the core pick)"
	flagMetasDesc   = "Print speaker metadata and exit"
	flagDevicesDesc = "Print supported devices and exit"
)

// Flag names.
const (
	flagText    = "text"
	flagOutput  = "output"
	flagSpeaker = "speaker"
	flagLibrary = "library"
	flagRuntime = "runtime"
	flagDict    = "dict"
	flagGPU     = "gpu"
	flagThreads = "threads"
	flagMetas   = "metas"
	flagDevices = "devices"
)

// Error and log messages.
const (
	errFailedToInitLogger  = "Failed to initialize logger: %v"
	errLibraryRequired     = "--library must be provided"
	errTextRequired        = "--text must be provided (or use --metas / --devices)"
	errFailedToInitCore    = "Failed to initialize voicevox core: %v"
	errFailedToSynthesize  = "Failed to synthesize: %v"
	errFailedToWriteOutput = "Failed to write output file: %v"
	errFailedToFetchMetas  = "Failed to fetch speaker metadata: %v"
	errFailedToFetchDevs   = "Failed to fetch supported devices: %v"
	logGenerated           = "Generated: %s\n"
)

const (
	logFileName       = "vvcore-client.log"
	defaultOutputFile = "output.wav"
	outputFileMode    = 0o644
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	text    string
	output  string
	speaker int64
	library string
	runtime string
	dict    string
	gpu     bool
	threads int
	metas   bool
	devices bool
}

func main() {
	err := run()
	if err != nil {
		// A logger might not be initialized yet, so use the standard log package.
		log.Fatalf("Error: %v", err)
	}
}

// run is the main application entry point, returning an error on failure.
func run() error {
	flags := parseFlags()

	appLogger, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return fmt.Errorf(errFailedToInitLogger, err)
	}

	defer func() {
		closeErr := appLogger.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	err = validateFlags(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	synthesizer, err := synth.New(synth.Options{
		LibraryPath:        flags.library,
		RuntimePath:        flags.runtime,
		InitDir:            "",
		OpenJTalkDictDir:   flags.dict,
		UseGPU:             flags.gpu,
		CPUNumThreads:      int32(flags.threads),
		EnableFaultHandler: true,
	}, appLogger)
	if err != nil {
		return fmt.Errorf(errFailedToInitCore, err)
	}
	defer synthesizer.Finalize()

	if flags.metas {
		return printMetas(synthesizer)
	}

	if flags.devices {
		return printDevices(synthesizer)
	}

	return synthesizeToFile(synthesizer, flags)
}

// parseFlags defines and parses command-line flags, returning them in a struct.
func parseFlags() appFlags {
	var flags appFlags
	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.output, flagOutput, defaultOutputFile, flagOutputDesc)
	flag.Int64Var(&flags.speaker, flagSpeaker, 0, flagSpeakerDesc)
	flag.StringVar(&flags.library, flagLibrary, "", flagLibraryDesc)
	flag.StringVar(&flags.runtime, flagRuntime, "", flagRuntimeDesc)
	flag.StringVar(&flags.dict, flagDict, "", flagDictDesc)
	flag.BoolVar(&flags.gpu, flagGPU, false, flagGPUDesc)
	flag.IntVar(&flags.threads, flagThreads, 0, flagThreadsDesc)
	flag.BoolVar(&flags.metas, flagMetas, false, flagMetasDesc)
	flag.BoolVar(&flags.devices, flagDevices, false, flagDevicesDesc)
	flag.Parse()

	return flags
}

// validateFlags rejects flag combinations that cannot be executed.
func validateFlags(flags appFlags) error {
	if flags.library == "" {
		return errors.New(errLibraryRequired)
	}

	if flags.text == "" && !flags.metas && !flags.devices {
		return errors.New(errTextRequired)
	}

	return nil
}

// printMetas writes the decoded speaker metadata to stdout as JSON.
func printMetas(synthesizer *synth.Synthesizer) error {
	speakers, err := synthesizer.Metas()
	if err != nil {
		return fmt.Errorf(errFailedToFetchMetas, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err = encoder.Encode(speakers)
	if err != nil {
		return fmt.Errorf(errFailedToFetchMetas, err)
	}

	return nil
}

// printDevices writes the decoded device availability to stdout as JSON.
func printDevices(synthesizer *synth.Synthesizer) error {
	devices, err := synthesizer.SupportedDevices()
	if err != nil {
		return fmt.Errorf(errFailedToFetchDevs, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err = encoder.Encode(devices)
	if err != nil {
		return fmt.Errorf(errFailedToFetchDevs, err)
	}

	return nil
}

// synthesizeToFile converts the flag text into a WAV file on disk.
func synthesizeToFile(synthesizer *synth.Synthesizer, flags appFlags) error {
	data, err := synthesizer.TTS(context.Background(), flags.text, flags.speaker)
	if err != nil {
		return fmt.Errorf(errFailedToSynthesize, err)
	}

	err = os.WriteFile(flags.output, data, outputFileMode)
	if err != nil {
		return fmt.Errorf(errFailedToWriteOutput, err)
	}

	info, infoErr := audio.ParseWAVInfo(data)
	if infoErr == nil {
		fmt.Printf("%s: %s, %d Hz, %d-bit, %d channel(s)\n",
			flags.output, info.Duration, info.SampleRate, info.BitsPerSample, info.Channels)
	} else {
		fmt.Printf(logGenerated, flags.output)
	}

	return nil
}
