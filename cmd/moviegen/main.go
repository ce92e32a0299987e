// Command moviegen generates a complete action-movie concept through the
// gateway, falling back to canned templates when the gateway reports a
// terminal failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"moviegen/internal/domain"
	"moviegen/internal/gateway"
	"moviegen/internal/infra"
	"moviegen/internal/templates"
)

func main() {
	_ = godotenv.Load()

	var (
		serverURL = flag.String("server", envOr("MOVIEGEN_API_URL", "http://localhost:8080"), "gateway server base URL")
		concepts  = flag.Int("concepts", 0, "generate N short concepts instead of one full treatment (1-5)")
		withImage = flag.Bool("poster", false, "also generate a poster image")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "seed for the template fallback")
	)
	flag.Parse()

	logger := infra.NewLogger(envOr("APP_ENV", "development"))

	client, err := gateway.NewClient(gateway.Options{
		BaseURL: *serverURL,
		Logger:  &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build gateway client")
	}

	fallback := templates.New(*seed)
	ctx := context.Background()

	if *concepts > 0 {
		runConcepts(ctx, client, fallback, *concepts)
		return
	}
	runTreatment(ctx, client, fallback, *withImage)
}

func runConcepts(ctx context.Context, client *gateway.Client, fallback *templates.Generator, n int) {
	list, err := client.GenerateConcepts(ctx, n)
	if err != nil || len(list) == 0 {
		explain(err)
		list = fallback.Concepts(n)
	}
	for i, c := range list {
		fmt.Printf("%d. %s\n   %s\n", i+1, c.Title, c.Plot)
	}
}

func runTreatment(ctx context.Context, client *gateway.Client, fallback *templates.Generator, withImage bool) {
	params := fallback.ConceptParams()
	fmt.Printf("Pitch: a former %s in %s vs. a %s, driven by %s.\n\n",
		params.FormerProfession, params.Setting, params.Villain, params.PlotTrigger)

	plot, err := client.GeneratePlot(ctx, params, "")
	if err != nil {
		explain(err)
		plot = &domain.Plot{Title: fallback.Title(), Body: fallback.Plot(params)}
	}
	fmt.Printf("%s\n\n%s\n\n", plot.Title, plot.Body)

	script, err := client.GenerateTrailerScript(ctx, plot.Title, plot.Body)
	if err != nil {
		explain(err)
		script = fallback.TrailerScript(plot.Title)
	}
	fmt.Printf("TRAILER\n%s\n\n", script)

	description, err := client.GeneratePosterDescription(ctx, plot.Title, plot.Body)
	if err != nil {
		explain(err)
		description = fallback.PosterDescription(plot.Title)
	}
	fmt.Printf("POSTER\n%s\n", description)

	if withImage {
		// No local fallback can paint a poster; a terminal failure here is
		// surfaced as an actionable message instead.
		url, err := client.GeneratePosterImage(ctx, plot.Title, plot.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "poster image unavailable (%v); try again later\n", err)
			return
		}
		fmt.Printf("\nPOSTER IMAGE\n%s\n", url)
	}
}

// explain tells the user why the canned fallback is being used.
func explain(err error) {
	if err == nil {
		return
	}
	if env, ok := gateway.AsEnvelope(err); ok {
		switch env.Kind {
		case gateway.KindRateLimited, gateway.KindQuotaExceeded:
			fmt.Fprintln(os.Stderr, "generation quota exhausted; using canned templates")
			return
		case gateway.KindUnavailable:
			fmt.Fprintln(os.Stderr, "gateway circuit open; using canned templates")
			return
		}
	}
	fmt.Fprintf(os.Stderr, "generation failed (%v); using canned templates\n", err)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
