// Command surveydemo runs the survey pipeline end to end against a bundled
// fixture API: it captures a page snapshot from the flags, fetches the
// surveys, and reports which ones the visitor would see.
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/glimpsehq/glimpse-go/config"
	"github.com/glimpsehq/glimpse-go/flags"
	"github.com/glimpsehq/glimpse-go/htmlenv"
	"github.com/glimpsehq/glimpse-go/log"
	"github.com/glimpsehq/glimpse-go/model"
	"github.com/glimpsehq/glimpse-go/stubapi"
	"github.com/glimpsehq/glimpse-go/surveys"
)

const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

const samplePage = `<!doctype html>
<html>
<body>
	<nav class="top-nav"></nav>
	<main>
		<div id="feedback-widget"></div>
	</main>
</body>
</html>`

func main() {
	embedded := flag.Bool("embedded", true, "serve the bundled fixture surveys instead of a real API")
	pageURL := flag.String("page-url", "https://example.com/pricing", "URL of the visited page")
	userAgent := flag.String("user-agent", defaultUserAgent, "visitor User-Agent")
	htmlPath := flag.String("html", "", "path to a page snapshot (default: bundled sample page)")
	enabledFlags := flag.String("flags", "beta-feedback", "comma separated enabled feature flags")

	cfg, err := config.ParseFlags()
	if *embedded {
		if cfg.Token == "" {
			cfg.Token = "demo"
		}
		cfg.APIHost, err = serveFixtures(cfg.Token)
		if err != nil {
			log.Fatal("main.fixtures:", err)
		}
	} else if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	var body io.Reader = strings.NewReader(samplePage)
	if *htmlPath != "" {
		f, err := os.Open(*htmlPath)
		if err != nil {
			log.Fatal("main.html:", err)
		}
		defer f.Close()
		body = f
	}

	page, err := htmlenv.New(*pageURL, *userAgent, body)
	if err != nil {
		log.Fatal("main.page:", err)
	}
	run(cfg, page, *enabledFlags)
}

func run(cfg config.Config, page *htmlenv.Page, enabledFlags string) {
	enabled := flags.Static{}
	for _, key := range strings.Split(enabledFlags, ",") {
		if key = strings.TrimSpace(key); key != "" {
			enabled[key] = true
		}
	}

	store, err := surveys.New(cfg, surveys.Options{
		Environment: page,
		Flags:       enabled,
	})
	if err != nil {
		log.Fatal("main.store:", err)
	}

	unsubscribe := store.OnSurveysLoaded(func(list []model.Survey, result surveys.LoadResult) {
		if result.Err != nil {
			log.Warn("surveys load failed:", result.Err)
			return
		}
		log.Infof("loaded %d surveys (visitor %s)", len(list), store.DistinctID())
	})
	defer unsubscribe()

	store.LoadIfEnabled(consoleExtension{})

	store.GetActiveMatchingSurveys(func(list []model.Survey, result surveys.LoadResult) {
		if result.Err != nil {
			log.Fatal("main.surveys:", result.Err)
		}
		if len(list) == 0 {
			fmt.Println("no matching surveys for this visitor")
			return
		}
		for _, survey := range list {
			decision := store.CanRenderSurvey(survey.ID)
			fmt.Printf("%s %q (%s) visible=%v\n", survey.ID, survey.Name, survey.Type, decision.Visible)
			store.MarkSurveySeen(survey)
		}
	}, false)
}

// serveFixtures starts the stub API on a loopback port and returns its URL.
func serveFixtures(token string) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	go func() {
		err := http.Serve(ln, stubapi.Wire(token, fixtureSurveys()))
		log.Fatal("main.stub:", err)
	}()
	return "http://" + ln.Addr().String(), nil
}

func fixtureSurveys() []model.Survey {
	start := model.NewTimestamp(time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC))

	return []model.Survey{
		{
			ID:        "pricing-feedback",
			Name:      "Pricing page feedback",
			Type:      model.TypePopover,
			StartDate: start,
			Questions: []model.Question{
				{Type: "open", Question: "What almost stopped you from upgrading?"},
			},
			Conditions: &model.Conditions{
				URL:      "example.com",
				Selector: "#feedback-widget",
			},
		},
		{
			ID:            "beta-nps",
			Name:          "Beta NPS",
			Type:          model.TypeWidget,
			StartDate:     start,
			LinkedFlagKey: "beta-feedback",
			Questions: []model.Question{
				{Type: "rating", Question: "How likely are you to recommend us?"},
			},
		},
		{
			ID:        "mobile-checkout",
			Name:      "Mobile checkout study",
			Type:      model.TypePopover,
			StartDate: start,
			Questions: []model.Question{
				{Type: "open", Question: "How was checkout on your phone?"},
			},
			Conditions: &model.Conditions{
				DeviceTypes: []string{htmlenv.DeviceMobile},
			},
		},
	}
}

// consoleExtension is a stand-in presenter: it declares every survey
// renderable and prints instead of drawing UI.
type consoleExtension struct{}

func (consoleExtension) GenerateSurveys(store *surveys.Store) (surveys.Manager, error) {
	return consoleManager{}, nil
}

func (consoleExtension) LoadExternalDependency(name string, cb func(error)) {
	cb(nil)
}

func (consoleExtension) CanActivateRepeatedly(survey model.Survey) bool {
	return false
}

type consoleManager struct{}

func (consoleManager) CanRenderSurvey(survey model.Survey) surveys.RenderDecision {
	return surveys.RenderDecision{Visible: true}
}

func (consoleManager) RenderSurvey(survey model.Survey, selector string) error {
	fmt.Printf("rendering %q into %s\n", survey.Name, selector)
	return nil
}
