package block

// Props is the property record carried by a Block. The set of
// implementations is closed: one record per block Type.
type Props interface {
	Kind() Type
	sealed()
}

// HeadingProps configures a Heading block. Level is "h1".."h6".
type HeadingProps struct {
	Text      string `json:"text"`
	Level     string `json:"level"`
	Alignment string `json:"alignment"`
	Color     string `json:"color"`
}

type TextProps struct {
	Content   string `json:"content"`
	Alignment string `json:"alignment"`
	FontSize  string `json:"fontSize"`
	Color     string `json:"color"`
}

type ImageProps struct {
	Src          string `json:"src"`
	Alt          string `json:"alt"`
	Width        string `json:"width"`
	Alignment    string `json:"alignment"`
	BorderRadius string `json:"borderRadius"`
}

type DividerProps struct {
	Style     string `json:"style"`
	Color     string `json:"color"`
	Thickness string `json:"thickness"`
	Width     string `json:"width"`
	Alignment string `json:"alignment"`
	Spacing   string `json:"spacing"`
}

type ButtonProps struct {
	Label        string `json:"label"`
	URL          string `json:"url"`
	Variant      string `json:"variant"`
	Size         string `json:"size"`
	Alignment    string `json:"alignment"`
	Color        string `json:"color"`
	BorderRadius string `json:"borderRadius"`
}

type SpacerProps struct {
	Height string `json:"height"`
}

type VideoProps struct {
	URL          string `json:"url"`
	Width        string `json:"width"`
	Alignment    string `json:"alignment"`
	BorderRadius string `json:"borderRadius"`
}

type SocialLinksProps struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
	YouTube   string `json:"youtube"`
	Size      string `json:"size"`
	Alignment string `json:"alignment"`
	Color     string `json:"color"`
}

// MenuProps.Items holds one "Label | url" pair per line.
type MenuProps struct {
	Items     string `json:"items"`
	Alignment string `json:"alignment"`
	Color     string `json:"color"`
	FontSize  string `json:"fontSize"`
	Separator string `json:"separator"`
}

type HtmlEmbedProps struct {
	Code string `json:"code"`
}

type SectionProps struct {
	BackgroundColor string `json:"backgroundColor"`
	PaddingTop      string `json:"paddingTop"`
	PaddingBottom   string `json:"paddingBottom"`
	PaddingLeft     string `json:"paddingLeft"`
	PaddingRight    string `json:"paddingRight"`
	MaxWidth        string `json:"maxWidth"`
}

// ColumnsProps.Layout is one of 50-50, 33-33-33, 25-25-25-25, 66-33, 33-66.
type ColumnsProps struct {
	Layout        string `json:"layout"`
	Gap           string `json:"gap"`
	VerticalAlign string `json:"verticalAlign"`
}

func (HeadingProps) Kind() Type     { return TypeHeading }
func (TextProps) Kind() Type        { return TypeText }
func (ImageProps) Kind() Type       { return TypeImage }
func (DividerProps) Kind() Type     { return TypeDivider }
func (ButtonProps) Kind() Type      { return TypeButton }
func (SpacerProps) Kind() Type      { return TypeSpacer }
func (VideoProps) Kind() Type       { return TypeVideo }
func (SocialLinksProps) Kind() Type { return TypeSocialLinks }
func (MenuProps) Kind() Type        { return TypeMenu }
func (HtmlEmbedProps) Kind() Type   { return TypeHtmlEmbed }
func (SectionProps) Kind() Type     { return TypeSection }
func (ColumnsProps) Kind() Type     { return TypeColumns }

func (HeadingProps) sealed()     {}
func (TextProps) sealed()        {}
func (ImageProps) sealed()       {}
func (DividerProps) sealed()     {}
func (ButtonProps) sealed()      {}
func (SpacerProps) sealed()      {}
func (VideoProps) sealed()       {}
func (SocialLinksProps) sealed() {}
func (MenuProps) sealed()        {}
func (HtmlEmbedProps) sealed()   {}
func (SectionProps) sealed()     {}
func (ColumnsProps) sealed()     {}

// Defaults returns the editor's default prop set for t, or nil for an
// unknown type. These are what a block dropped from the palette starts with.
func Defaults(t Type) Props {
	switch t {
	case TypeHeading:
		return HeadingProps{Text: "Your Heading Here", Level: "h1", Alignment: "left", Color: "#1a1a2e"}
	case TypeText:
		return TextProps{
			Content:   "Add your text content here. You can write paragraphs, descriptions, or any textual content for your page or email.",
			Alignment: "left",
			FontSize:  "16px",
			Color:     "#333333",
		}
	case TypeImage:
		return ImageProps{
			Src:          "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=800&q=80",
			Alt:          "Placeholder image",
			Width:        "100%",
			Alignment:    "center",
			BorderRadius: "8px",
		}
	case TypeDivider:
		return DividerProps{Style: "solid", Color: "#e0e0e0", Thickness: "1px", Width: "100%", Alignment: "center", Spacing: "16px"}
	case TypeButton:
		return ButtonProps{Label: "Click Here", URL: "#", Variant: "primary", Size: "medium", Alignment: "center", Color: "#4361ee", BorderRadius: "6px"}
	case TypeSpacer:
		return SpacerProps{Height: "32px"}
	case TypeVideo:
		return VideoProps{URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", Width: "100%", Alignment: "center", BorderRadius: "12px"}
	case TypeSocialLinks:
		return SocialLinksProps{
			Facebook:  "https://facebook.com",
			Twitter:   "https://twitter.com",
			Instagram: "https://instagram.com",
			LinkedIn:  "https://linkedin.com",
			Size:      "medium",
			Alignment: "center",
			Color:     "#555555",
		}
	case TypeMenu:
		return MenuProps{
			Items:     "Home | #\nAbout | #about\nServices | #services\nContact | #contact",
			Alignment: "center",
			Color:     "#4361ee",
			FontSize:  "15px",
			Separator: "|",
		}
	case TypeHtmlEmbed:
		return HtmlEmbedProps{Code: `<div style="padding: 20px; background: #f0f4ff; border-radius: 8px; text-align: center; color: #4361ee;"><strong>Custom HTML Block</strong><br/>Paste any HTML here</div>`}
	case TypeSection:
		return SectionProps{BackgroundColor: "#ffffff", PaddingTop: "32px", PaddingBottom: "32px", PaddingLeft: "32px", PaddingRight: "32px", MaxWidth: "100%"}
	case TypeColumns:
		return ColumnsProps{Layout: "50-50", Gap: "24px", VerticalAlign: "top"}
	}
	return nil
}

// newProps returns a zero record for t, used when decoding JSON.
func newProps(t Type) (Props, bool) {
	switch t {
	case TypeHeading:
		return &HeadingProps{}, true
	case TypeText:
		return &TextProps{}, true
	case TypeImage:
		return &ImageProps{}, true
	case TypeDivider:
		return &DividerProps{}, true
	case TypeButton:
		return &ButtonProps{}, true
	case TypeSpacer:
		return &SpacerProps{}, true
	case TypeVideo:
		return &VideoProps{}, true
	case TypeSocialLinks:
		return &SocialLinksProps{}, true
	case TypeMenu:
		return &MenuProps{}, true
	case TypeHtmlEmbed:
		return &HtmlEmbedProps{}, true
	case TypeSection:
		return &SectionProps{}, true
	case TypeColumns:
		return &ColumnsProps{}, true
	}
	return nil, false
}
