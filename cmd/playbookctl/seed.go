package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/playbook-backend/internal/app"
	"github.com/yungbote/playbook-backend/internal/platform/ctxutil"
	"github.com/yungbote/playbook-backend/internal/services"
)

var seedFile string
var seedActor string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load products, items, subitems and scenarios from a YAML file",
	Long: `Load a catalog fixture through the service layer.

Items and subitems carry a key so scenarios can reference them:

  scenarios:
    - title: Onboarding
      items: [laptop-setup]
      hidden: [laptop-setup/vpn]`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "path to the seed YAML file")
	seedCmd.Flags().StringVar(&seedActor, "actor", "seed", "actor stamped on created rows")
	_ = seedCmd.MarkFlagRequired("file")
}

type seedDoc struct {
	Products  []seedProduct  `yaml:"products"`
	Scenarios []seedScenario `yaml:"scenarios"`
}

type seedProduct struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Items       []seedItem `yaml:"items"`
}

type seedItem struct {
	Key      string        `yaml:"key"`
	Title    string        `yaml:"title"`
	Subitems []seedSubitem `yaml:"subitems"`
}

type seedSubitem struct {
	Key         string  `yaml:"key"`
	Title       string  `yaml:"title"`
	Subtitle    *string `yaml:"subtitle"`
	Description string  `yaml:"description"`
	FilePath    *string `yaml:"file_path"`
}

type seedScenario struct {
	Title                string   `yaml:"title"`
	Description          string   `yaml:"description"`
	FormattedDescription *string  `yaml:"formatted_description"`
	Items                []string `yaml:"items"`
	Hidden               []string `yaml:"hidden"`
}

// parseSeed decodes and cross-checks a fixture. Subitem references in hidden
// take the form "<item key>/<subitem key>" and the item must be linked.
func parseSeed(r io.Reader) (*seedDoc, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc seedDoc
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return &doc, nil
		}
		return nil, fmt.Errorf("decode seed: %w", err)
	}

	items := map[string]map[string]bool{}
	for pi, p := range doc.Products {
		if strings.TrimSpace(p.Title) == "" {
			return nil, fmt.Errorf("products[%d]: title is required", pi)
		}
		for ii, it := range p.Items {
			if strings.TrimSpace(it.Title) == "" {
				return nil, fmt.Errorf("products[%d].items[%d]: title is required", pi, ii)
			}
			subs := map[string]bool{}
			if it.Key != "" {
				if _, dup := items[it.Key]; dup {
					return nil, fmt.Errorf("duplicate item key %q", it.Key)
				}
				items[it.Key] = subs
			}
			for si, s := range it.Subitems {
				if strings.TrimSpace(s.Title) == "" {
					return nil, fmt.Errorf("products[%d].items[%d].subitems[%d]: title is required", pi, ii, si)
				}
				if s.Key == "" {
					continue
				}
				if subs[s.Key] {
					return nil, fmt.Errorf("duplicate subitem key %q under item %q", s.Key, it.Key)
				}
				subs[s.Key] = true
			}
		}
	}

	for si, sc := range doc.Scenarios {
		if strings.TrimSpace(sc.Title) == "" {
			return nil, fmt.Errorf("scenarios[%d]: title is required", si)
		}
		linked := map[string]bool{}
		for _, key := range sc.Items {
			if _, ok := items[key]; !ok {
				return nil, fmt.Errorf("scenarios[%d]: unknown item %q", si, key)
			}
			linked[key] = true
		}
		for _, ref := range sc.Hidden {
			itemKey, subKey, ok := strings.Cut(ref, "/")
			if !ok || !items[itemKey][subKey] {
				return nil, fmt.Errorf("scenarios[%d]: unknown subitem %q", si, ref)
			}
			if !linked[itemKey] {
				return nil, fmt.Errorf("scenarios[%d]: %q hides a subitem of an unlinked item", si, ref)
			}
		}
	}
	return &doc, nil
}

type seedStats struct {
	Products  int
	Items     int
	Subitems  int
	Scenarios int
	Links     int
	Hidden    int
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := parseSeed(f)
	if err != nil {
		return err
	}

	ctx := ctxutil.WithRequestData(cmd.Context(), &ctxutil.RequestData{Actor: seedActor})
	application, err := app.New(ctx)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	stats, err := applySeed(ctx, application.Services, doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(),
		"seeded %d products, %d items, %d subitems, %d scenarios (%d links, %d hidden subitems)\n",
		stats.Products, stats.Items, stats.Subitems, stats.Scenarios, stats.Links, stats.Hidden)
	return nil
}

type subitemRef struct {
	itemID    uint64
	subitemID uint64
}

func applySeed(ctx context.Context, svc app.Services, doc *seedDoc) (seedStats, error) {
	var stats seedStats
	itemIDs := map[string]uint64{}
	subitemIDs := map[string]subitemRef{}

	for _, p := range doc.Products {
		product, err := svc.Content.CreateProduct(ctx, services.ProductInput{Title: p.Title, Description: p.Description})
		if err != nil {
			return stats, fmt.Errorf("create product %q: %w", p.Title, err)
		}
		stats.Products++
		for _, it := range p.Items {
			item, err := svc.Content.CreateItem(ctx, product.ID, it.Title)
			if err != nil {
				return stats, fmt.Errorf("create item %q: %w", it.Title, err)
			}
			stats.Items++
			if it.Key != "" {
				itemIDs[it.Key] = item.ID
			}
			for _, s := range it.Subitems {
				sub, err := svc.Content.CreateSubitem(ctx, item.ID, services.SubitemInput{
					Title:       s.Title,
					Subtitle:    s.Subtitle,
					Description: s.Description,
					FilePath:    s.FilePath,
				})
				if err != nil {
					return stats, fmt.Errorf("create subitem %q: %w", s.Title, err)
				}
				stats.Subitems++
				if it.Key != "" && s.Key != "" {
					subitemIDs[it.Key+"/"+s.Key] = subitemRef{itemID: item.ID, subitemID: sub.ID}
				}
			}
		}
	}

	for _, sc := range doc.Scenarios {
		scenario, err := svc.Scenario.CreateScenario(ctx, services.ScenarioInput{
			Title:                sc.Title,
			Description:          sc.Description,
			FormattedDescription: sc.FormattedDescription,
		})
		if err != nil {
			return stats, fmt.Errorf("create scenario %q: %w", sc.Title, err)
		}
		stats.Scenarios++

		ids := make([]uint64, 0, len(sc.Items))
		for _, key := range sc.Items {
			ids = append(ids, itemIDs[key])
		}
		if len(ids) > 0 {
			results, err := svc.Composition.AddItemsToScenario(ctx, scenario.ID, ids)
			if err != nil {
				return stats, fmt.Errorf("link items to %q: %w", sc.Title, err)
			}
			for _, r := range results {
				if r.Error != nil {
					return stats, fmt.Errorf("link item %d to %q: %s", r.ID, sc.Title, r.Error.Message)
				}
				if !r.Skipped {
					stats.Links++
				}
			}
		}

		for _, ref := range sc.Hidden {
			target := subitemIDs[ref]
			if _, err := svc.Composition.SetVisibility(ctx, scenario.ID, target.itemID, target.subitemID, false); err != nil {
				return stats, fmt.Errorf("hide %q in %q: %w", ref, sc.Title, err)
			}
			stats.Hidden++
		}
	}
	return stats, nil
}
