package digest

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pep299/article-digest/internal/article"
)

// Title is the document title of every digest
const Title = "Your daily article reviews"

// EditURLBase is the save-for-later endpoint each item links to
const EditURLBase = "https://getpocket.com/edit?url="

const (
	flagUS      = "🇺🇸"
	flagHungary = "🇭🇺"
)

// ratingColors holds the left border color of ratings 1 to 10
var ratingColors = [10]string{
	"#cc4125",
	"#D86735",
	"#E58D45",
	"#F2B355",
	"#ffd966",
	"#D8D57C",
	"#D4D16F",
	"#BFCD73",
	"#A9C978",
	"#93c47d",
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Render renders articles into a complete HTML digest. Articles are rendered
// in the order given; a category header is emitted whenever the category
// differs from the previous article's, so callers must pass articles already
// grouped by category.
func Render(articles []article.Article) string {
	var body strings.Builder
	lastCategory := ""

	for _, a := range articles {
		if a.Category != lastCategory {
			if lastCategory != "" {
				body.WriteString("</ul>\n")
			}
			body.WriteString(categoryHeader(a.Category))
			lastCategory = a.Category
		}
		body.WriteString(RenderArticle(a))
	}
	// Closed unconditionally, so an empty digest still carries one </ul>.
	body.WriteString("\n</ul>")

	return Header() + body.String() + Footer()
}

// Header returns the document head with the rating stylesheet
func Header() string {
	var css strings.Builder
	css.WriteString("    li { list-style:none; margin-left:0; border-left:4px solid; padding-left:5px; margin-bottom:2px; }\n")
	for i, color := range ratingColors {
		css.WriteString("li.rating")
		css.WriteString(strconv.Itoa(i + 1))
		css.WriteString(" { border-left-color:")
		css.WriteString(color)
		css.WriteString("; }\n")
	}

	return `<html lang="en"><head><style>` + css.String() + `</style><title>` + Title + `</title></head><body>`
}

// Footer closes the document opened by Header
func Footer() string {
	return "</body></html>"
}

// RenderArticle renders a single article as a list item
func RenderArticle(a article.Article) string {
	flag := flagHungary
	if a.Language == article.English {
		flag = flagUS
	}

	title := `<strong><a href="` + a.URL + `">` + EscapeHTML(a.Title) + `</a></strong>`
	if a.IsURLDead {
		title = `<strong>` + EscapeHTML(a.Title) + `</strong>`
	}

	authorInfo := ""
	if a.HasAuthors() {
		authorInfo = ` <em>by ` + strings.Join(a.Authors, ", ") + `</em>`
	}

	var details []string
	if a.IsURLDead {
		details = append(details, `<a href="`+a.URL+`">dead link</a>`)
	}
	if a.PublicationDate != nil {
		details = append(details, a.PublicationDate.String())
	}
	if !a.Minutes.IsZero() {
		details = append(details, a.Minutes.String()+" minutes")
	}
	detailInfo := ""
	if len(details) > 0 {
		detailInfo = " (" + strings.Join(details, ", ") + ")"
	}

	reading := "Read date: " + a.ReadDate.String() + ", Rating: " + a.Rating.String() + " / 10"

	var b strings.Builder
	b.WriteString(`<li class="rating` + a.Rating.String() + `">` + flag + "\n")
	b.WriteString("  " + title + authorInfo + detailInfo + "<br />\n")
	b.WriteString("  " + EscapeHTML(a.Review) + "<br />\n")
	b.WriteString("  <em>(" + reading + `)</em> — <a class="pocketLink" href="` + EditURL(a) + `">Add to Pocket</a>` + "\n")
	b.WriteString("</li>\n")
	return b.String()
}

// EditURL returns the save-for-later link of an article, built from
// OriginalURL rather than URL.
func EditURL(a article.Article) string {
	return EditURLBase + a.OriginalURL
}

// EscapeHTML escapes &, < and >. Quotes are left alone.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func categoryHeader(category string) string {
	return "<h2>" + capitalize(category) + "</h2>\n<ul>\n"
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
