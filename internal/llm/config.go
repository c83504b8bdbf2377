// Package llm provides the model configuration and the client used for
// structured Gemini calls.
package llm

// Task names a kind of model call. Each task can be pointed at its own model.
type Task string

const (
	// TaskAnalysis is the CV analysis call.
	TaskAnalysis Task = "analysis"
	// TaskHeadshot is the headshot feedback call.
	TaskHeadshot Task = "headshot"
)

// Provider represents an LLM provider
type Provider string

// ProviderGemini is the Google Gemini provider
const ProviderGemini Provider = "gemini"

// DefaultAnalysisModel is the model used for CV and headshot analysis.
const DefaultAnalysisModel = "gemini-2.5-flash"

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Models   map[Task]string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[Task]string{
			TaskAnalysis: DefaultAnalysisModel,
			TaskHeadshot: DefaultAnalysisModel,
		},
	}
}

// GetModel returns the model name for a task. Tasks without their own model
// use the analysis model.
func (c *Config) GetModel(task Task) string {
	if model, ok := c.Models[task]; ok {
		return model
	}
	return c.Models[TaskAnalysis]
}

// WithModel returns a new Config with model set for each of tasks, or for
// every known task when none are given. An empty model changes nothing.
func (c *Config) WithModel(model string, tasks ...Task) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		Models:   make(map[Task]string, len(c.Models)),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	if model == "" {
		return newConfig
	}
	if len(tasks) == 0 {
		tasks = []Task{TaskAnalysis, TaskHeadshot}
	}
	for _, task := range tasks {
		newConfig.Models[task] = model
	}
	return newConfig
}
