package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard walks through an interactive setup and saves the resulting
// config to path. An existing file is only overwritten with force.
func RunWizard(path string, force bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	fmt.Println("Welcome to reddit-analyzer! Let's set up your collector.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Embedding provider.
	providerPrompt := promptui.Select{
		Label: "Embedding provider",
		Items: []string{
			"ollama (local, requires a running Ollama server)",
			"openai (hosted, requires an API key)",
		},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOllama, ProviderOpenAI}
	cfg.Embedding.Provider = providers[providerIdx]

	// 2. Embedding model.
	defaultModel := "nomic-embed-text"
	if cfg.Embedding.Provider == ProviderOpenAI {
		defaultModel = "text-embedding-3-small"
	}
	modelPrompt := promptui.Prompt{
		Label:   "Embedding model",
		Default: defaultModel,
	}
	model, err := modelPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("model: %w", err)
	}
	cfg.Embedding.Model = strings.TrimSpace(model)

	// 3. Vector dimensions, asked only for models we don't recognize.
	if dims := DimensionsFor(cfg.Embedding.Model); dims > 0 {
		cfg.Embedding.Dimensions = dims
	} else {
		dimsPrompt := promptui.Prompt{
			Label:   "Vector dimensions for " + cfg.Embedding.Model,
			Default: "768",
			Validate: func(s string) error {
				n, err := strconv.Atoi(s)
				if err != nil || n < 1 {
					return fmt.Errorf("enter a positive number")
				}
				return nil
			},
		}
		dimsStr, err := dimsPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("dimensions: %w", err)
		}
		cfg.Embedding.Dimensions, _ = strconv.Atoi(dimsStr)
	}

	if cfg.Embedding.Provider == ProviderOllama {
		urlPrompt := promptui.Prompt{
			Label:   "Ollama base URL",
			Default: cfg.Embedding.Ollama.BaseURL,
		}
		baseURL, err := urlPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("ollama url: %w", err)
		}
		cfg.Embedding.Ollama.BaseURL = strings.TrimSpace(baseURL)
	}

	// 4. Reddit credentials. Optional here: embed and search work on an
	// already-populated database without them.
	fmt.Println()
	fmt.Println("Reddit API credentials (create a script app at reddit.com/prefs/apps).")
	fmt.Println("Leave blank to fill in later; fetch and research need them.")

	idPrompt := promptui.Prompt{Label: "Client ID"}
	clientID, err := idPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("client id: %w", err)
	}
	cfg.Reddit.ClientID = strings.TrimSpace(clientID)

	if cfg.Reddit.ClientID != "" {
		secretPrompt := promptui.Prompt{
			Label: "Client secret",
			Mask:  '*',
		}
		secret, err := secretPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("client secret: %w", err)
		}
		cfg.Reddit.ClientSecret = strings.TrimSpace(secret)
	}

	agentPrompt := promptui.Prompt{
		Label:   "User agent",
		Default: cfg.Reddit.UserAgent,
	}
	agent, err := agentPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("user agent: %w", err)
	}
	cfg.Reddit.UserAgent = strings.TrimSpace(agent)

	// 5. Database path.
	dbPrompt := promptui.Prompt{
		Label:   "Database path",
		Default: cfg.Database.Path,
	}
	dbPath, err := dbPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	cfg.Database.Path = strings.TrimSpace(dbPath)

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  reddit-analyzer setup              # verify connectivity")
	fmt.Println("  reddit-analyzer fetch <subreddit>  # collect posts")
	fmt.Println("  reddit-analyzer embed              # embed the backlog")
	fmt.Println("  reddit-analyzer search \"a query\"   # search by meaning")
	return cfg, nil
}
