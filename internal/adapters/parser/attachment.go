package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"vk-archive-parser/internal/domain"
)

// ExtractAttachment извлекает описание и ссылку вложения.
func ExtractAttachment(item *goquery.Selection) (domain.Attachment, error) {
	description := item.Find(".attachment__description").First()
	if description.Length() == 0 {
		html, _ := goquery.OuterHtml(item)
		return domain.Attachment{}, domain.NewParseError(domain.ErrMissingAttachmentDescription, html, nil)
	}

	attachment := domain.Attachment{Description: strings.TrimSpace(description.Text())}
	if link := item.Find(".attachment__link").First(); link.Length() > 0 {
		text := strings.TrimSpace(link.Text())
		attachment.Link = &text
	}
	return attachment, nil
}
