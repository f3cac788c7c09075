package agent

import "github.com/dlanger/typecast/pkg/infotype"

// Builtin returns the catalog of podcast agents. Every contract produces a
// single output value; multi-act fan-out happens in the workflow declaration,
// not inside an agent.
func Builtin() *Catalog {
	cat := NewCatalog()
	for _, c := range []Contract{
		{
			Name:        "narrative",
			Description: "Extracts the most compelling narrative from the source text, in the style of Ira Glass.",
			InputTypes:  []infotype.Tag{infotype.SourceText},
			OutputType:  infotype.Narrative,
			Prompt:      narrativePrompt,
		},
		{
			Name:        "acts",
			Description: "Builds a detailed three-act episode structure from the source text and a narrative summary.",
			InputTypes:  []infotype.Tag{infotype.SourceText, infotype.Narrative},
			OutputType:  infotype.Acts,
			Prompt:      actsPrompt,
		},
		{
			Name:        "contextualize",
			Description: "Enriches an act structure with supporting details from the source text.",
			InputTypes:  []infotype.Tag{infotype.SourceText, infotype.Acts},
			OutputType:  infotype.IndepthSummary,
			Prompt:      contextualizePrompt,
		},
		{
			Name:        "analogies",
			Description: "Generates analogies that explain complex concepts in simple terms.",
			InputTypes:  []infotype.Tag{infotype.IndepthSummary},
			OutputType:  infotype.IndepthSummary,
			Prompt:      analogiesPrompt,
		},
		{
			Name:        "scriptwriter",
			Description: "Writes a two-host podcast transcript from an act structure and supporting material.",
			InputTypes:  []infotype.Tag{infotype.Acts, infotype.IndepthSummary},
			OutputType:  infotype.Transcript,
			Prompt:      scriptwriterPrompt,
		},
		{
			Name:        "combine",
			Description: "Combines multiple transcript drafts into a single cohesive transcript.",
			InputTypes:  []infotype.Tag{infotype.Transcript, infotype.Transcript, infotype.Transcript},
			OutputType:  infotype.Transcript,
			Prompt:      combinePrompt,
		},
		{
			Name:        "expand",
			Description: "Doubles a transcript's length while preserving content and style.",
			InputTypes:  []infotype.Tag{infotype.Transcript},
			OutputType:  infotype.Transcript,
			Prompt:      expandPrompt,
		},
		{
			Name:        "personalize",
			Description: "Personalizes a transcript with the hosts' backgrounds and human-like touches.",
			InputTypes:  []infotype.Tag{infotype.Transcript},
			OutputType:  infotype.PersonalizedTranscript,
			Prompt:      personalizePrompt(DefaultHosts()),
		},
		{
			Name:        "simple_script",
			Description: "Converts a three-act structure directly into a simple podcast transcript.",
			InputTypes:  []infotype.Tag{infotype.Acts},
			OutputType:  infotype.Transcript,
			Prompt:      simpleScriptPrompt,
		},
	} {
		if err := cat.Declare(c); err != nil {
			panic(err)
		}
	}
	return cat
}
