package body

// Mode 在创建时选定一次，决定玩法的呈现变体
type Mode string

const (
	// cards family
	ModeDuplicate   Mode = "duplicate"
	ModeWordsImages Mode = "words-images"
	ModeBeginsWith  Mode = "begins-with"
	ModeLettering   Mode = "lettering"
	ModeRiddles     Mode = "riddles"
	ModeOpposites   Mode = "opposites"
	ModeTranslate   Mode = "translate"

	// canvas family
	ModePrintables      Mode = "printables"
	ModeTalkingPictures Mode = "talking-pictures"
	ModeComics          Mode = "comics"
	ModeMaps            Mode = "maps"
	ModePoster          Mode = "poster"

	// drag-drop
	ModeSetting    Mode = "setting-table"
	ModeSorting    Mode = "sorting"
	ModeDressUp    Mode = "dress-up"
	ModeSequencing Mode = "sequencing"

	ModeCover Mode = "cover"
	ModeVideo Mode = "video"
	ModeEmbed Mode = "embed"
)

// availableModes lists the legal modes per kind; the first entry is the
// default installed by ChooseMode when the requested mode is empty.
var availableModes = map[ModuleKind][]Mode{
	KindMemory:       {ModeDuplicate, ModeWordsImages, ModeBeginsWith, ModeLettering, ModeRiddles, ModeOpposites, ModeTranslate},
	KindMatching:     {ModeDuplicate, ModeWordsImages, ModeBeginsWith, ModeLettering, ModeRiddles, ModeOpposites, ModeTranslate},
	KindFlashcards:   {ModeDuplicate, ModeWordsImages, ModeBeginsWith, ModeLettering, ModeRiddles, ModeOpposites, ModeTranslate},
	KindCardQuiz:     {ModeDuplicate, ModeWordsImages, ModeBeginsWith, ModeLettering, ModeRiddles, ModeOpposites, ModeTranslate},
	KindDragDrop:     {ModeSetting, ModeSorting, ModeDressUp, ModeSequencing},
	KindTappingBoard: {ModeTalkingPictures, ModeComics, ModeMaps, ModePoster},
	KindCover:        {ModeCover},
	KindFindAnswer:   {ModeTalkingPictures, ModeMaps, ModePoster},
	KindPoster:       {ModePoster, ModeTalkingPictures, ModePrintables},
	KindVideo:        {ModeVideo},
	KindEmbed:        {ModeEmbed},
	KindLegacy:       {},
}

// ModeAllowed reports whether the mode is legal for the kind.
func ModeAllowed(kind ModuleKind, mode Mode) bool {
	for _, m := range availableModes[kind] {
		if m == mode {
			return true
		}
	}
	return false
}

// BaseContent 所有玩法内容共享的部分
type BaseContent struct {
	Mode         Mode         `json:"mode"`
	EditorState  EditorState  `json:"editorState"`
	Base         DesignBase   `json:"base"`
	Instructions ModuleAssist `json:"instructions"`
	Feedback     ModuleAssist `json:"feedback"`
	Play         PlaySettings `json:"playSettings"`
}

func newBaseContent(mode Mode) BaseContent {
	return BaseContent{
		Mode:        mode,
		EditorState: NewEditorState(),
		Play:        DefaultPlaySettings(),
	}
}

// Content 每个玩法各自的内容；Body.Content 为 nil 表示尚未选择模式
type Content interface {
	base() *BaseContent
	isComplete() bool
	preloads() []string
}

// CardSide 卡面：文字、图片或文字+音频
type CardSide struct {
	Text  string `json:"text,omitempty"`
	Image *Image `json:"image,omitempty"`
	Audio *Audio `json:"audio,omitempty"`
}

func (c CardSide) isEmpty() bool {
	return c.Text == "" && c.Image == nil
}

type CardPair struct {
	A CardSide `json:"a"`
	B CardSide `json:"b"`
}

// CardsContent memory / matching / flashcards / card-quiz 共用
type CardsContent struct {
	BaseContent
	Pairs []CardPair `json:"pairs"`
}

const minCardPairs = 2

func (c *CardsContent) base() *BaseContent { return &c.BaseContent }

func (c *CardsContent) isComplete() bool {
	if len(c.Pairs) < minCardPairs {
		return false
	}
	for _, p := range c.Pairs {
		if p.A.isEmpty() || p.B.isEmpty() {
			return false
		}
	}
	return true
}

func (c *CardsContent) preloads() []string {
	urls := designPreloads(&c.Base, &c.Instructions, &c.Feedback)
	for _, p := range c.Pairs {
		urls = append(urls, cardPreloads(p.A)...)
		urls = append(urls, cardPreloads(p.B)...)
	}
	return urls
}

func cardPreloads(side CardSide) []string {
	var urls []string
	if side.Image != nil && side.Image.URL != "" {
		urls = append(urls, side.Image.URL)
	}
	if side.Audio != nil && side.Audio.URL != "" {
		urls = append(urls, side.Audio.URL)
	}
	return urls
}

// CanvasContent cover / tapping-board / poster：仅画布设计
type CanvasContent struct {
	BaseContent
}

func (c *CanvasContent) base() *BaseContent { return &c.BaseContent }

func (c *CanvasContent) isComplete() bool {
	return len(c.Base.Backgrounds) > 0 || len(c.Base.Stickers) > 0 || len(c.Base.Traces) > 0
}

func (c *CanvasContent) preloads() []string {
	return designPreloads(&c.Base, &c.Instructions, &c.Feedback)
}

type DragItemKind string

const (
	DragItemStatic      DragItemKind = "static"
	DragItemInteractive DragItemKind = "interactive"
)

// DragItem binds a sticker to a drop target trace.
type DragItem struct {
	StickerIndex int          `json:"stickerIndex"`
	Kind         DragItemKind `json:"kind"`
	TargetTrace  *int         `json:"targetTrace,omitempty"`
	Audio        *Audio       `json:"audio,omitempty"`
}

type DragDropContent struct {
	BaseContent
	Items []DragItem `json:"items"`
}

func (c *DragDropContent) base() *BaseContent { return &c.BaseContent }

func (c *DragDropContent) isComplete() bool {
	interactive := 0
	for _, it := range c.Items {
		if it.Kind == DragItemInteractive {
			if it.TargetTrace == nil {
				return false
			}
			interactive++
		}
	}
	return interactive > 0
}

func (c *DragDropContent) preloads() []string {
	urls := designPreloads(&c.Base, &c.Instructions, &c.Feedback)
	for _, it := range c.Items {
		if it.Audio != nil && it.Audio.URL != "" {
			urls = append(urls, it.Audio.URL)
		}
	}
	return urls
}

// FindAnswerQuestion points a prompt at one of the design traces.
type FindAnswerQuestion struct {
	Title      string `json:"title"`
	Text       string `json:"text,omitempty"`
	Audio      *Audio `json:"audio,omitempty"`
	TraceIndex int    `json:"traceIndex"`
}

type FindAnswerContent struct {
	BaseContent
	Questions []FindAnswerQuestion `json:"questions"`
	Ordered   bool                 `json:"ordered,omitempty"`
}

func (c *FindAnswerContent) base() *BaseContent { return &c.BaseContent }

func (c *FindAnswerContent) isComplete() bool {
	if len(c.Questions) == 0 {
		return false
	}
	for _, q := range c.Questions {
		if q.Title == "" || q.TraceIndex < 0 || q.TraceIndex >= len(c.Base.Traces) {
			return false
		}
	}
	return true
}

func (c *FindAnswerContent) preloads() []string {
	urls := designPreloads(&c.Base, &c.Instructions, &c.Feedback)
	for _, q := range c.Questions {
		if q.Audio != nil && q.Audio.URL != "" {
			urls = append(urls, q.Audio.URL)
		}
	}
	return urls
}

type VideoContent struct {
	BaseContent
	Video *VideoSticker `json:"video,omitempty"`
}

func (c *VideoContent) base() *BaseContent { return &c.BaseContent }

func (c *VideoContent) isComplete() bool {
	if c.Video == nil {
		return false
	}
	switch c.Video.Host {
	case VideoHostYoutube:
		return c.Video.YoutubeID != ""
	case VideoHostDirect:
		return c.Video.URL != ""
	}
	return false
}

func (c *VideoContent) preloads() []string {
	urls := designPreloads(&c.Base, &c.Instructions, &c.Feedback)
	if c.Video != nil && c.Video.Host == VideoHostYoutube && c.Video.YoutubeID != "" {
		// thumbnail only; the stream itself is not prefetched
		urls = append(urls, "https://img.youtube.com/vi/"+c.Video.YoutubeID+"/hqdefault.jpg")
	}
	return urls
}

type EmbedContent struct {
	BaseContent
	Embed *EmbedSticker `json:"embed,omitempty"`
}

func (c *EmbedContent) base() *BaseContent { return &c.BaseContent }

func (c *EmbedContent) isComplete() bool {
	return c.Embed != nil && c.Embed.ID != ""
}

func (c *EmbedContent) preloads() []string {
	return designPreloads(&c.Base, &c.Instructions, &c.Feedback)
}

// LegacyContent 旧版导入内容：仅指向已迁移的素材清单
type LegacyContent struct {
	BaseContent
	GameID      string `json:"gameId"`
	ManifestURL string `json:"manifestUrl,omitempty"`
}

func (c *LegacyContent) base() *BaseContent { return &c.BaseContent }

func (c *LegacyContent) isComplete() bool { return c.GameID != "" }

func (c *LegacyContent) preloads() []string {
	urls := designPreloads(&c.Base, &c.Instructions, &c.Feedback)
	if c.ManifestURL != "" {
		urls = append(urls, c.ManifestURL)
	}
	return urls
}

func designPreloads(base *DesignBase, assists ...*ModuleAssist) []string {
	var urls []string
	for _, bg := range base.Backgrounds {
		if bg.Kind == BackgroundImage && bg.Image != nil {
			urls = append(urls, stickerPreloads(*bg.Image)...)
		}
	}
	for _, st := range base.Stickers {
		urls = append(urls, stickerPreloads(st)...)
	}
	for _, tr := range base.Traces {
		if tr.Audio != nil && tr.Audio.URL != "" {
			urls = append(urls, tr.Audio.URL)
		}
	}
	for _, a := range assists {
		if a == nil {
			continue
		}
		if a.Audio != nil && a.Audio.URL != "" {
			urls = append(urls, a.Audio.URL)
		}
		if a.HintImage != nil && a.HintImage.URL != "" {
			urls = append(urls, a.HintImage.URL)
		}
	}
	return urls
}

func stickerPreloads(st Sticker) []string {
	switch st.Kind {
	case StickerSprite:
		if st.Sprite != nil && st.Sprite.ImageID != "" {
			return []string{st.Sprite.ImageID}
		}
	case StickerVideo:
		if st.Video != nil && st.Video.Host == VideoHostYoutube && st.Video.YoutubeID != "" {
			return []string{"https://img.youtube.com/vi/" + st.Video.YoutubeID + "/hqdefault.jpg"}
		}
	}
	return nil
}
