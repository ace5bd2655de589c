package prompts

import (
	"fmt"
	"strings"

	"github.com/timmy/sitegen/internal/domain"
)

// ============================================================================
// Image Prompts
// ============================================================================

// HeroImagePrompt renders the prompt for the full-width banner image at the top of the site.
func HeroImagePrompt(b domain.Business) string {
	return fmt.Sprintf(
		"Professional, photorealistic hero banner photo for %s, a %s in %s. "+
			"Wide landscape composition with clear space for a headline, natural lighting, "+
			"inviting atmosphere that shows the business at its best. No text, no logos, no watermarks.",
		b.Name, b.Type, b.Location)
}

// ContactImagePrompt renders the prompt for the image shown next to the contact section.
func ContactImagePrompt(b domain.Business) string {
	return fmt.Sprintf(
		"Friendly, photorealistic photo for the contact section of the website of %s, a %s in %s. "+
			"Show a welcoming storefront, reception or team member ready to help customers. "+
			"No text, no logos, no watermarks.",
		b.Name, b.Type, b.Location)
}

// ============================================================================
// Site Prompt
// ============================================================================

// imageInstructionTemplate is appended verbatim to the caller's prompt when images were generated.
const imageInstructionTemplate = `

IMPORTANT IMAGE INSTRUCTIONS:
Use exactly these image URLs in the website. Do not change them.
- Hero section image: %s
- Contact section image: %s
Do NOT replace these images with placeholders, stock photos or any other URL.
Do NOT generate, request or add any additional images.`

// BuildSitePrompt concatenates the caller prompt with the literal image instruction block.
// Parameters:
//   - prompt: the caller's original prompt.
//   - images: generated image URLs, nil when the image step did not run.
//
// Returns:
//   - string: prompt to send to the site generator.
func BuildSitePrompt(prompt string, images *domain.ImageURLs) string {
	prompt = strings.TrimSpace(prompt)
	if images == nil {
		return prompt
	}
	return prompt + fmt.Sprintf(imageInstructionTemplate, images.Hero, images.Contact)
}
