package body

import (
	"math"
)

// Transform 2D仿射变换 (3x2 matrix, column-major: a b c d tx ty)
type Transform struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
}

// IdentityTransform returns the identity affine transform.
func IdentityTransform() Transform {
	return Transform{A: 1, D: 1}
}

// Apply maps a point through the transform.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.A*x + t.C*y + t.TX, t.B*x + t.D*y + t.TY
}

type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type StickerKind string

const (
	StickerSprite StickerKind = "sprite"
	StickerText   StickerKind = "text"
	StickerVideo  StickerKind = "video"
	StickerEmbed  StickerKind = "embed"
)

// Sticker 可放置元素：图片/富文本/视频/第三方嵌入，带仿射变换和层级
type Sticker struct {
	Kind      StickerKind `json:"kind"`
	Transform Transform   `json:"transform"`
	Size      *Size       `json:"size,omitempty"`
	ZIndex    int         `json:"zIndex"`

	Sprite *SpriteSticker `json:"sprite,omitempty"`
	Text   *TextSticker   `json:"text,omitempty"`
	Video  *VideoSticker  `json:"video,omitempty"`
	Embed  *EmbedSticker  `json:"embed,omitempty"`
}

type SpriteSticker struct {
	ImageID   string `json:"imageId"`
	LibraryID string `json:"libraryId"`
	FlipX     bool   `json:"flipX,omitempty"`
	FlipY     bool   `json:"flipY,omitempty"`
}

type TextSticker struct {
	// Value is the serialized rich-text document.
	Value    string  `json:"value"`
	Font     string  `json:"font,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Color    string  `json:"color,omitempty"`
}

type VideoHost string

const (
	VideoHostYoutube VideoHost = "youtube"
	VideoHostDirect  VideoHost = "direct"
)

type VideoSticker struct {
	Host       VideoHost `json:"host"`
	YoutubeID  string    `json:"youtubeId,omitempty"`
	URL        string    `json:"url,omitempty"`
	StartAt    *float64  `json:"startAt,omitempty"`
	EndAt      *float64  `json:"endAt,omitempty"`
	Captions   bool      `json:"captions,omitempty"`
	Muted      bool      `json:"muted,omitempty"`
	Autoplay   bool      `json:"autoplay,omitempty"`
	DoneAction string    `json:"doneAction,omitempty"`
}

type EmbedSticker struct {
	Host EmbedHost `json:"host"`
	// ID is the provider-specific identifier parsed from the pasted URL.
	ID string `json:"id"`
}

type BackgroundKind string

const (
	BackgroundColor BackgroundKind = "color"
	BackgroundImage BackgroundKind = "image"
)

// Background 底图：纯色或贴图
type Background struct {
	Kind  BackgroundKind `json:"kind"`
	Color string         `json:"color,omitempty"`
	Image *Sticker       `json:"image,omitempty"`
}

type TraceShapeKind string

const (
	TraceShapePath    TraceShapeKind = "path"
	TraceShapeEllipse TraceShapeKind = "ellipse"
	TraceShapeRect    TraceShapeKind = "rect"
)

type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TraceShape struct {
	Kind    TraceShapeKind `json:"kind"`
	Points  []PathPoint    `json:"points,omitempty"`
	RadiusX float64        `json:"radiusX,omitempty"`
	RadiusY float64        `json:"radiusY,omitempty"`
	Width   float64        `json:"width,omitempty"`
	Height  float64        `json:"height,omitempty"`
}

type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Trace 画布上的封闭热区，可携带音频和文本
type Trace struct {
	Transform Transform  `json:"transform"`
	Shape     TraceShape `json:"shape"`
	Audio     *Audio     `json:"audio,omitempty"`
	Text      string     `json:"text,omitempty"`

	// cached, recomputed lazily after a geometry mutation
	bounds *Bounds
}

// SetShape replaces the geometry and invalidates the cached bounds.
func (t *Trace) SetShape(shape TraceShape) {
	t.Shape = shape
	t.bounds = nil
}

// SetTransform replaces the transform and invalidates the cached bounds.
func (t *Trace) SetTransform(tr Transform) {
	t.Transform = tr
	t.bounds = nil
}

// Bounds returns the axis-aligned bounding box of the transformed shape.
// The result is cached until the next geometry mutation.
func (t *Trace) Bounds() Bounds {
	if t.bounds != nil {
		return *t.bounds
	}
	b := computeBounds(t.Transform, t.Shape)
	t.bounds = &b
	return b
}

func computeBounds(tr Transform, shape TraceShape) Bounds {
	var pts []PathPoint
	switch shape.Kind {
	case TraceShapePath:
		pts = shape.Points
	case TraceShapeEllipse:
		pts = []PathPoint{
			{-shape.RadiusX, -shape.RadiusY},
			{shape.RadiusX, -shape.RadiusY},
			{shape.RadiusX, shape.RadiusY},
			{-shape.RadiusX, shape.RadiusY},
		}
	case TraceShapeRect:
		pts = []PathPoint{
			{0, 0},
			{shape.Width, 0},
			{shape.Width, shape.Height},
			{0, shape.Height},
		}
	}
	if len(pts) == 0 {
		return Bounds{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		x, y := tr.Apply(p.X, p.Y)
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
	}
	return Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Audio 指向已上传的音频素材
type Audio struct {
	ID        string `json:"id"`
	LibraryID string `json:"libraryId,omitempty"`
	URL       string `json:"url,omitempty"`
}

type Image struct {
	ID        string `json:"id"`
	LibraryID string `json:"libraryId,omitempty"`
	URL       string `json:"url,omitempty"`
}

// ModuleAssist 玩法说明：短文本 + 可选音频/提示图
type ModuleAssist struct {
	Text      string `json:"text,omitempty"`
	Audio     *Audio `json:"audio,omitempty"`
	HintImage *Image `json:"hintImage,omitempty"`
}

// IsEmpty reports whether there is nothing to present before play.
func (m ModuleAssist) IsEmpty() bool {
	return m.Text == "" && m.Audio == nil && m.HintImage == nil
}

// DesignBase 各玩法共享的画布内容
type DesignBase struct {
	Backgrounds []Background `json:"backgrounds,omitempty"`
	Stickers    []Sticker    `json:"stickers,omitempty"`
	Traces      []Trace      `json:"traces,omitempty"`
}
