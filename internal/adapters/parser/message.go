package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"vk-archive-parser/internal/domain"
)

// Блоки с этими классами не входят в текст сообщения.
var bodyExcludedClasses = []string{"kludges", "attachment"}

// parseMessage собирает сообщение из блока с классом "message".
func (p *HTMLParser) parseMessage(item *goquery.Selection) (domain.Message, error) {
	rawID, _ := item.Attr("data-id")
	id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return domain.Message{}, domain.NewParseError(domain.ErrMissingMessageID, rawID, err)
	}

	header := item.Find(".message__header").First()
	if header.Length() == 0 {
		return domain.Message{}, domain.NewParseError(domain.ErrMissingHeader, rawID, nil)
	}

	fromID, date, err := p.headers.Resolve(header)
	if err != nil {
		return domain.Message{}, err
	}

	msg := domain.Message{
		ID:     id,
		FromID: fromID,
		Date:   date,
		Text:   bodyText(item, header),
	}

	items := item.Find(".attachment")
	if items.Length() > 0 {
		msg.Attachments = make([]domain.Attachment, 0, items.Length())
		for i := range items.Nodes {
			attachment, err := ExtractAttachment(items.Eq(i))
			if err != nil {
				return domain.Message{}, err
			}
			msg.Attachments = append(msg.Attachments, attachment)
		}
	}

	return msg, nil
}

// bodyText возвращает текст сообщения: весь текст блока, кроме заголовка
// и блоков вложений. <br> превращается в перевод строки.
func bodyText(item, header *goquery.Selection) string {
	var sb strings.Builder
	collectText(&sb, item.Get(0), header.Get(0))
	return strings.TrimSpace(sb.String())
}

func collectText(sb *strings.Builder, n, skip *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c == skip {
			continue
		}
		switch c.Type {
		case html.TextNode:
			sb.WriteString(c.Data)
		case html.ElementNode:
			if c.DataAtom == atom.Br {
				sb.WriteByte('\n')
				continue
			}
			if hasAnyClass(c, bodyExcludedClasses) {
				continue
			}
			collectText(sb, c, skip)
		}
	}
}

func hasAnyClass(n *html.Node, classes []string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(attr.Val) {
			for _, want := range classes {
				if class == want {
					return true
				}
			}
		}
	}
	return false
}
