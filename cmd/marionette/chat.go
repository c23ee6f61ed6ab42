package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-go-golems/marionette/pkg/events"
	"github.com/go-go-golems/marionette/pkg/model/openai"
	"github.com/go-go-golems/marionette/pkg/session"
	"github.com/go-go-golems/marionette/pkg/tools"
	"github.com/go-go-golems/marionette/pkg/transcript/serde"
)

type chatSettings struct {
	modelName   string
	baseURL     string
	system      string
	stream      bool
	withTools   bool
	maxRounds   int
	savePath    string
	printEvents bool
}

func newChatCommand() *cobra.Command {
	settings := &chatSettings{}

	cmd := &cobra.Command{
		Use:   "chat <prompt>",
		Short: "Run one prompt against an OpenAI-compatible backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), settings, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&settings.modelName, "model", "gpt-4o-mini", "completion model name")
	cmd.Flags().StringVar(&settings.baseURL, "base-url", "", "OpenAI-compatible base URL")
	cmd.Flags().StringVar(&settings.system, "system", "", "instructions text")
	cmd.Flags().BoolVar(&settings.stream, "stream", false, "stream the response incrementally")
	cmd.Flags().BoolVar(&settings.withTools, "with-tools", false, "register the builtin demo tools")
	cmd.Flags().IntVar(&settings.maxRounds, "max-rounds", session.DefaultConfig().MaxRounds, "maximum model rounds per turn")
	cmd.Flags().StringVar(&settings.savePath, "save", "", "save the transcript to this path (.json or .yaml)")
	cmd.Flags().BoolVar(&settings.printEvents, "print-events", false, "print session events as they are published")

	return cmd
}

func runChat(ctx context.Context, settings *chatSettings, prompt string, w io.Writer) error {
	apiKey := viper.GetString("api_key")
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return errors.New("no API key: set MARIONETTE_API_KEY or OPENAI_API_KEY")
	}

	var m *openai.Model
	if settings.baseURL != "" {
		m = openai.NewWithBaseURL(apiKey, settings.baseURL, openai.WithModelName(settings.modelName))
	} else {
		m = openai.New(apiKey, openai.WithModelName(settings.modelName))
	}

	options := []session.Option{
		session.WithConfig(session.DefaultConfig().WithMaxRounds(settings.maxRounds)),
	}
	if settings.system != "" {
		options = append(options, session.WithInstructions(settings.system))
	}
	if settings.withTools {
		demoTools, err := builtinTools()
		if err != nil {
			return err
		}
		options = append(options, session.WithTools(demoTools...))
	}

	if settings.printEvents {
		router, err := events.NewEventRouter()
		if err != nil {
			return err
		}
		defer func() { _ = router.Close() }()

		router.AddHandler("dump", "chat", router.DumpRawEvents)
		go func() {
			if err := router.Run(ctx); err != nil {
				log.Error().Err(err).Msg("event router stopped")
			}
		}()
		<-router.Running()

		manager := events.NewPublisherManager()
		manager.SubscribePublisher("chat", router.Publisher)
		options = append(options, session.WithEventSinks(manager))
	}

	s, err := session.New(m, options...)
	if err != nil {
		return err
	}

	if settings.stream {
		err = runStreaming(ctx, s, prompt, w)
	} else {
		err = runOneShot(ctx, s, prompt, w)
	}
	if err != nil {
		return err
	}

	if settings.savePath != "" {
		if err := serde.Save(settings.savePath, s.Transcript()); err != nil {
			return errors.Wrap(err, "save transcript")
		}
		log.Info().Str("path", settings.savePath).Msg("transcript saved")
	}
	return nil
}

func runOneShot(ctx context.Context, s *session.Session, prompt string, w io.Writer) error {
	result, err := s.Respond(ctx, prompt)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, result.Text)
	return nil
}

func runStreaming(ctx context.Context, s *session.Session, prompt string, w io.Writer) error {
	stream, err := s.RespondStreaming(ctx, prompt)
	if err != nil {
		return err
	}

	printed := 0
	for {
		snap, err := stream.Recv()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Fprint(w, snap.Text[printed:])
		printed = len(snap.Text)
	}
	fmt.Fprintln(w)

	_, err = stream.Finalize()
	return err
}

// builtinTools are small demo capabilities for exercising tool rounds
// without external services.
func builtinTools() ([]*tools.Tool, error) {
	type weatherRequest struct {
		Location string `json:"location" jsonschema:"description=City to look up"`
	}
	weather, err := tools.NewToolFromFunc("get_weather", "Get the current weather for a city",
		func(req weatherRequest) (string, error) {
			return fmt.Sprintf("It is 22°C and sunny in %s", req.Location), nil
		})
	if err != nil {
		return nil, err
	}

	type echoRequest struct {
		Text string `json:"text"`
	}
	echo, err := tools.NewToolFromFunc("echo", "Echo the given text back",
		func(req echoRequest) (string, error) {
			return req.Text, nil
		})
	if err != nil {
		return nil, err
	}

	return []*tools.Tool{weather, echo}, nil
}
