package insight

import (
	_ "embed"
	"fmt"
	"strings"
)

//go:embed prompts/system_v1.txt
var systemPromptV1 string

// BuildSystemPrompt renders the fixed system instruction that constrains the
// model to the three-key insight schema. The file clause is only present when
// the request was derived from an uploaded document.
func BuildSystemPrompt(language string, fileInfo *FileInfo) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	fileContext := ""
	if fileInfo != nil {
		fileContext = fmt.Sprintf(
			"You are analyzing the contents of the file %q, size %s (%d characters).\n"+
				"Pay particular attention to the file's type and structure.\n"+
				"Call out the key themes and the structural elements of the file.\n",
			fileInfo.Name, fileInfo.SizeLabel, fileInfo.CharCount,
		)
	}

	replacer := strings.NewReplacer(
		"{{LANGUAGE}}", language,
		"{{FILE_CONTEXT}}", fileContext,
	)
	return replacer.Replace(systemPromptV1)
}

// buildGenerateRequest assembles the upstream payload for one analysis.
func buildGenerateRequest(req AnalysisRequest) GenerateRequest {
	model := req.ModelParams.Model
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	temperature := req.ModelParams.Temperature
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	return GenerateRequest{
		Model:   model,
		Prompt:  req.Topic,
		System:  BuildSystemPrompt(req.Language, req.FileInfo),
		Format:  "json",
		Options: GenerateOptions{Temperature: temperature},
		Stream:  false,
	}
}
