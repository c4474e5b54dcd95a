// Package openai implements seo.Generator using OpenAI chat completions for
// article content and DALL-E for illustrations.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-faster/errors"
	goopenai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/MMMDolphin/ImunofanWebsite/internal/domain/seo"
)

var _ seo.Generator = (*Generator)(nil)

const systemPrompt = "You are an expert SEO content writer specializing in pharmaceutical and medical content. Always respond in valid JSON format."

const contentPromptFmt = `Generate SEO-optimized content for the keyword %q with intent %q for a pharmaceutical peptide product called Imunofan.

The content should be in Bulgarian and follow these requirements:
1. Create a compelling H1 title (max 60 characters)
2. Write a meta description (max 160 characters)
3. Generate comprehensive content (800-1200 words) that includes:
   - Introduction to the keyword topic
   - How Imunofan relates to this keyword/intent
   - Benefits and scientific backing
   - Usage recommendations
   - Call-to-action

The content should be professional, scientifically accurate, and conversion-optimized. Focus on the medical applications of Imunofan peptide therapy.

Return the response in JSON format with title, metaDescription, and content fields.`

// Generator is the OpenAI implementation of seo.Generator.
type Generator struct {
	client *goopenai.Client
}

// New creates a Generator backed by the given API key.
func New(apiKey string) *Generator {
	return &Generator{client: goopenai.NewClient(apiKey)}
}

// GenerateContent asks the chat model for a Bulgarian SEO article in JSON
// mode and decodes the structured result.
func (g *Generator) GenerateContent(ctx context.Context, keyword, intent string) (*seo.GeneratedContent, error) {
	resp, err := g.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: goopenai.GPT4o,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: fmt.Sprintf(contentPromptFmt, keyword, intent)},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.7,
		MaxTokens:   2000,
	})
	if err != nil {
		return nil, errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	var parsed struct {
		Title           string `json:"title"`
		MetaDescription string `json:"metaDescription"`
		Content         string `json:"content"`
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &parsed); err != nil {
		return nil, errors.Wrap(err, "decode completion payload")
	}

	content := &seo.GeneratedContent{
		Title:           parsed.Title,
		MetaDescription: parsed.MetaDescription,
		Content:         parsed.Content,
	}
	// The model occasionally drops fields despite the JSON-mode instructions.
	if content.Title == "" {
		content.Title = keyword + " - Имунофан"
	}
	if content.MetaDescription == "" {
		content.MetaDescription = fmt.Sprintf("Научете повече за %s с Имунофан пептидна терапия.", keyword)
	}
	if content.Content == "" {
		return nil, errors.New("completion payload has empty content")
	}
	return content, nil
}

// GenerateImages renders the two page illustrations concurrently: a clinical
// one and a lifestyle one.
func (g *Generator) GenerateImages(ctx context.Context, keyword, intent string) (*seo.GeneratedImages, error) {
	prompts := [2]string{
		fmt.Sprintf("A professional medical illustration showing %s in the context of pharmaceutical peptide therapy. Modern, clean medical aesthetic with blue and teal color scheme. High quality, pharmaceutical grade visualization. No text in image.", keyword),
		fmt.Sprintf("A lifestyle image showing health and wellness related to %s. Professional medical photography style with natural lighting. Show healthy people or medical consultation scenario. Blue and teal medical branding colors. No text in image.", keyword),
	}

	var urls [2]string
	grp, grpCtx := errgroup.WithContext(ctx)
	for i, prompt := range prompts {
		grp.Go(func() error {
			resp, err := g.client.CreateImage(grpCtx, goopenai.ImageRequest{
				Model:   goopenai.CreateImageModelDallE3,
				Prompt:  prompt,
				N:       1,
				Size:    goopenai.CreateImageSize1024x1024,
				Quality: goopenai.CreateImageQualityStandard,
			})
			if err != nil {
				return errors.Wrapf(err, "image %d", i+1)
			}
			if len(resp.Data) == 0 {
				return errors.Errorf("image %d: empty response", i+1)
			}
			urls[i] = resp.Data[0].URL
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return &seo.GeneratedImages{
		Image1URL: urls[0],
		Image2URL: urls[1],
	}, nil
}
