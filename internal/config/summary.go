package config

import (
	"os"
	"strings"
	"sync"
)

const (
	SummaryProviderAzure  = "azure"
	SummaryProviderGemini = "gemini"
)

type SummaryConfig struct {
	Provider            string
	AzureEndpoint       string
	AzureKey            string
	AzureDeploymentName string
	AzureAPIVersion     string
}

var (
	summaryConfig *SummaryConfig
	summaryOnce   sync.Once
)

func LoadSummaryConfig() *SummaryConfig {
	summaryOnce.Do(func() {
		summaryConfig = &SummaryConfig{
			Provider:            strings.ToLower(envDefault("SUMMARY_PROVIDER", SummaryProviderAzure)),
			AzureEndpoint:       strings.TrimRight(os.Getenv("AZURE_OPENAI_ENDPOINT"), "/"),
			AzureKey:            os.Getenv("AZURE_OPENAI_KEY"),
			AzureDeploymentName: envDefault("AZURE_OPENAI_DEPLOYMENT_NAME", "gpt-4o-mini"),
			AzureAPIVersion:     envDefault("AZURE_OPENAI_API_VERSION", "2023-12-01-preview"),
		}
	})
	return summaryConfig
}
