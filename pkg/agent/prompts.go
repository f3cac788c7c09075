package agent

import (
	"fmt"
	"strings"

	"github.com/dlanger/typecast/pkg/infotype"
	"github.com/dlanger/typecast/pkg/llm"
)

func messages(system, user string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: strings.TrimSpace(system)},
		{Role: llm.RoleUser, Content: strings.TrimSpace(user)},
	}
}

func narrativePrompt(inputs []infotype.Value) []llm.Message {
	source := inputs[0].Text()
	system := `You are an expert storyteller and podcaster, embodying the style and approach of Ira Glass.
Your task is to analyze source text and extract the most compelling, top-level story,
focusing on the most interesting human elements while capturing the main point of the document.`
	user := fmt.Sprintf(`As an expert storyteller in the style of Ira Glass, analyze the following source text and create show notes for a potential podcast episode.

Source text:

%s

Your output should include:
1. A 2-3 paragraph summary capturing the essential idea of the episode: the main theme, the most interesting human story illustrating it, and a compelling way to introduce and conclude the topic for a broad audience.
2. Key storytelling elements: an anecdote that could make the audience laugh, a moment that could evoke emotion, an inspiring takeaway, and a potential twist or unexpected angle if one exists.
3. Structure and tone: a clear narrative arc (beginning, middle, end) in a conversational tone, with suggestions for making complex ideas accessible.

These are show notes to guide the episode, not the final script. Focus on the essence of the story.`, source)
	return messages(system, user)
}

func actsPrompt(inputs []infotype.Value) []llm.Message {
	source, narrative := inputs[0].Text(), inputs[1].Text()
	system := `You are an expert storyteller and podcast structure specialist, skilled in crafting compelling three-act narratives.
Take a source text and a narrative summary and create a detailed three-act structure for a podcast episode.`
	user := fmt.Sprintf(`Create a three-act structure for a podcast episode from the following material.

Source text:

%s

Narrative summary:

%s

Each act should be 1-2 paragraphs:
Act 1 (Setup): how to introduce the topic, key context to establish early, and a hook that carries through the episode.
Act 2 (Main body): the core ideas to explore, how to deepen engagement, and any key revelations.
Act 3 (Resolution): a satisfying conclusion, key takeaways, and final thoughts.

The source is likely a scientific paper, so frame the acts accordingly: Act 1 introduces the idea in a fun way and names the authors and institution, Act 2 covers the main details while driving the narrative above, Act 3 concludes with insights and why the work matters.

IMPORTANT: clearly separate the acts with 'Act_1:', 'Act_2:' and 'Act_3:' labels and include no other text outside of them.`, source, narrative)
	return messages(system, user)
}

func contextualizePrompt(inputs []infotype.Value) []llm.Message {
	source, acts := inputs[0].Text(), inputs[1].Text()
	system := `You are an expert at analyzing and contextualizing information. Take a high-level act structure and the source text, then provide supporting details that enrich and expand upon it.`
	user := fmt.Sprintf(`Given the following source text and act structure, provide the high-level ideas (refined where necessary) with supporting details drawn from the source.

Source text:

%s

Acts:

%s

Format your response as:
High Level Idea: [refined idea]

Supporting Details:
- [detail]
- [detail]
...

Ensure the supporting details are key points from the source text that are relevant to and support the high-level ideas.`, source, acts)
	return messages(system, user)
}

func analogiesPrompt(inputs []infotype.Value) []llm.Message {
	summary := inputs[0].Text()
	system := `You are an expert at creating analogies to explain complex concepts. Take a detailed summary and create 5 analogies that break the content down into easily understandable terms for a general audience with no specialized knowledge of the domain.`
	user := fmt.Sprintf(`Given the following detailed summary, create 5 analogies that explain the key concepts in simple, relatable terms. Give your thought process for each, then list all 5 analogies at the end.

Detailed summary:

%s

Format your response as:

Thought Process:
[reasoning for each analogy]

Analogies:
1. [first analogy]
2. [second analogy]
3. [third analogy]
4. [fourth analogy]
5. [fifth analogy]`, summary)
	return messages(system, user)
}

func scriptwriterPrompt(inputs []infotype.Value) []llm.Message {
	acts, summary := inputs[0].Text(), inputs[1].Text()
	system := `You are a podcast scriptwriter. Write a transcript of two co-hosts discussing a research paper, following a three-act structure and weaving in supporting details and analogies. Mark every turn with the speaker's name in square brackets, e.g. [Bob] or [Carolyn].`
	user := fmt.Sprintf(`Write a podcast transcript between two hosts, Bob and Carolyn, based on the following material.

Three-act structure:

%s

In-depth supporting material (details and analogies):

%s

Follow the act structure from setup to resolution. Keep the tone conversational, alternate speakers naturally, and use the analogies to make complex ideas accessible. Tag every line with [Bob] or [Carolyn] and output nothing but the transcript.`, acts, summary)
	return messages(system, user)
}

func combinePrompt(inputs []infotype.Value) []llm.Message {
	var drafts strings.Builder
	for i, in := range inputs {
		fmt.Fprintf(&drafts, "Draft %d:\n\n%s\n\n", i+1, in.Text())
	}
	system := `You are a podcast editor. Combine multiple transcript drafts of the same episode into a single cohesive transcript, keeping the best material from each.`
	user := fmt.Sprintf(`Combine the following transcript drafts into one cohesive podcast transcript. Keep the strongest segments, remove repetition, and preserve the [Speaker] tags on every line.

%sOutput only the combined transcript.`, drafts.String())
	return messages(system, user)
}

func expandPrompt(inputs []infotype.Value) []llm.Message {
	transcript := inputs[0].Text()
	system := `You are a podcast editor. Take a transcript and roughly double its length while preserving its content, structure, and style.`
	user := fmt.Sprintf(`Expand the following podcast transcript to about twice its length. Deepen the discussion, add natural back-and-forth between the hosts, and keep the [Speaker] tags intact.

Transcript:

%s

Output only the expanded transcript.`, transcript)
	return messages(system, user)
}

func personalizePrompt(hosts []Host) PromptFunc {
	var personas strings.Builder
	for _, h := range hosts {
		personas.WriteString(h.Description)
		personas.WriteString("\n\n")
	}
	return func(inputs []infotype.Value) []llm.Message {
		transcript := inputs[0].Text()
		system := `You are a podcast script editor. Personalize a transcript using the hosts' backgrounds and add human-like elements: small asides, callbacks to their lives, and natural speech patterns.`
		user := fmt.Sprintf(`Personalize the following transcript for these hosts.

Hosts:

%s
Transcript:

%s

Keep the [Speaker] tags on every line and output only the personalized transcript.`, personas.String(), transcript)
		return messages(system, user)
	}
}

func simpleScriptPrompt(inputs []infotype.Value) []llm.Message {
	acts := inputs[0].Text()
	system := `You are a podcast scriptwriter. Convert a three-act structure into a simple podcast transcript between two hosts, Bob and Carolyn.`
	user := fmt.Sprintf(`Convert the following three-act structure into a podcast transcript between Bob and Carolyn. Tag every line with [Bob] or [Carolyn] and output nothing but the transcript.

Acts:

%s`, acts)
	return messages(system, user)
}
