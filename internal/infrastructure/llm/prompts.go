package llm

import (
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are a shopping research assistant. You turn a person's desire into product search queries for several countries. Always answer with a single JSON object.`

const extractionSystemPrompt = `You are a product analyst. You read a web page and decide whether it presents a concrete product that fulfils a desire. Always answer with a single JSON object and never invent data that is not on the page.`

// languageNames are used to make the prompt unambiguous
var languageNames = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"zh": "Simplified Chinese",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"ko": "Korean",
}

func buildAnalysisPrompt(desire string, languages []string) string {
	described := make([]string, 0, len(languages))
	for _, lang := range languages {
		if name, ok := languageNames[lang]; ok {
			described = append(described, fmt.Sprintf("%s (%s)", lang, name))
			continue
		}
		described = append(described, lang)
	}

	return fmt.Sprintf(`Desire: %q

1. Restate the desire as a concrete product need.
2. List up to 5 keywords.
3. Name the product category.
4. Write one web search query per language, in this order: %s.
   Each query must be written in that language and aim at pages selling or presenting specific products.

Respond with JSON:
{
  "refined_desire": "string",
  "keywords": ["string"],
  "category": "string",
  "translated_queries": [
    {"language": "en", "query": "string", "search_intent": "string"}
  ]
}`, desire, strings.Join(described, ", "))
}

func buildExtractionPrompt(content, desire string) string {
	return fmt.Sprintf(`Desire: %q

Page content (markdown):
---
%s
---

If the page presents a specific product (not a list, article or search page) that could fulfil the desire, extract it.
Score relevance_score from 0 (unrelated) to 10 (perfect fit) and explain why in one or two sentences.

Respond with JSON:
{
  "found": true,
  "name": "string",
  "brand": "string",
  "description": "string",
  "price": {"amount": 0, "currency": "ISO 4217 code", "formatted": "string"},
  "official_url": "string",
  "amazon_url": "string",
  "rakuten_url": "string",
  "instagram_url": "string",
  "relevance_score": 0,
  "reasoning": "string"
}
Use null or "" for anything not on the page. If there is no such product respond with {"found": false}.`, desire, content)
}
