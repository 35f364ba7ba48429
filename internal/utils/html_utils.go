package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HardenHTML 为外链和图片补充安全属性，并把 @ai 提及标记出来方便前端高亮
func HardenHTML(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			s.SetAttr("rel", "nofollow noopener noreferrer")
			s.SetAttr("target", "_blank")
		}
	})

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("referrerpolicy", "no-referrer")
		s.SetAttr("loading", "lazy")
	})

	doc.Find("p").Each(func(i int, s *goquery.Selection) {
		if MentionsAI(s.Text()) {
			s.AddClass("mentions-ai")
		}
	})

	// goquery 会补全 html/body，这里只要 body 内容
	out, _ := doc.Find("body").Html()
	if out == "" {
		out, _ = doc.Html()
	}
	return template.HTML(out)
}
