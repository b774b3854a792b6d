package codec

import "fmt"

// OptimizedSession is the precision-reduced, short-keyed session layout.
// Its field layout is the version of the compressed format.
type OptimizedSession struct {
	H OptHeader       `json:"h"`
	E []OptElement    `json:"e"`
	V []OptEvent      `json:"v"`
	S []OptScreenshot `json:"s"`
}

// OptHeader is the header in short-key form. It is lossless.
type OptHeader struct {
	ID      string    `json:"i"`
	Start   int64     `json:"s"`
	End     *int64    `json:"e,omitempty"`
	Device  OptDevice `json:"d"`
	App     OptApp    `json:"a"`
	Version int       `json:"v"`
}

// OptDevice is the device descriptor in short-key form.
type OptDevice struct {
	Platform   string  `json:"p"`
	OSVersion  string  `json:"o,omitempty"`
	Model      string  `json:"m,omitempty"`
	Width      int     `json:"w,omitempty"`
	Height     int     `json:"h,omitempty"`
	PixelRatio float64 `json:"r,omitempty"`
	Locale     string  `json:"l,omitempty"`
}

// OptApp is the app descriptor in short-key form.
type OptApp struct {
	ID      string `json:"i"`
	Name    string `json:"n,omitempty"`
	Version string `json:"v,omitempty"`
	Build   string `json:"b,omitempty"`
}

// OptElement is an element with its type tag replaced by a TypeCode.
type OptElement struct {
	TestID   string   `json:"i,omitempty"`
	Label    string   `json:"l,omitempty"`
	Text     string   `json:"x,omitempty"`
	Type     TypeCode `json:"t"`
	Selector string   `json:"s,omitempty"`
}

// OptEvent is one event with integer dt and a flat payload.
type OptEvent struct {
	D int64    `json:"d"`
	T int      `json:"t"`
	P OptData  `json:"p"`
	F *OptPerf `json:"f,omitempty"`
}

// OptData is the union of every payload's fields.
// Coordinates, deltas and durations are whole numbers.
type OptData struct {
	Kind      string `json:"k"`
	Element   *int   `json:"e,omitempty"`
	X         int64  `json:"x,omitempty"`
	Y         int64  `json:"y,omitempty"`
	X2        int64  `json:"x2,omitempty"`
	Y2        int64  `json:"y2,omitempty"`
	Ms        int64  `json:"ms,omitempty"`
	Direction string `json:"dir,omitempty"`
	Value     string `json:"v,omitempty"`
	Masked    bool   `json:"m,omitempty"`
	InputType string `json:"it,omitempty"`
	From      string `json:"fr,omitempty"`
	To        string `json:"to,omitempty"`
	URL       string `json:"u,omitempty"`
	Method    string `json:"mt,omitempty"`
	State     string `json:"st,omitempty"`
	Message   string `json:"msg,omitempty"`
	Stack     string `json:"stk,omitempty"`
	Fatal     bool   `json:"ft,omitempty"`
}

// OptPerf holds scaled integer performance readings.
type OptPerf struct {
	FPS    *int64 `json:"f,omitempty"` // fps * 10
	Memory *int64 `json:"m,omitempty"` // megabytes * 1000
	Lag    *int64 `json:"l,omitempty"` // milliseconds
}

// OptScreenshot is a screenshot reference in short-key form.
type OptScreenshot struct {
	ID     string `json:"i"`
	Event  int    `json:"e"`
	URI    string `json:"u"`
	Width  int    `json:"w,omitempty"`
	Height int    `json:"h,omitempty"`
}

// TypeCode is the integer form of an element type tag.
type TypeCode int

// Element type codes. The table is closed; codes are part of the format.
const (
	TypeOther    TypeCode = 0
	TypeButton   TypeCode = 1
	TypeLink     TypeCode = 2
	TypeInput    TypeCode = 3
	TypeText     TypeCode = 4
	TypeImage    TypeCode = 5
	TypeView     TypeCode = 6
	TypeScroll   TypeCode = 7
	TypeList     TypeCode = 8
	TypeSwitch   TypeCode = 9
	TypeCheckbox TypeCode = 10
	TypeSelect   TypeCode = 11
)

var typeNames = [...]string{
	TypeOther:    "other",
	TypeButton:   "button",
	TypeLink:     "link",
	TypeInput:    "input",
	TypeText:     "text",
	TypeImage:    "image",
	TypeView:     "view",
	TypeScroll:   "scroll",
	TypeList:     "list",
	TypeSwitch:   "switch",
	TypeCheckbox: "checkbox",
	TypeSelect:   "select",
}

var typeCodes = func() map[string]TypeCode {
	m := make(map[string]TypeCode, len(typeNames))
	for code, name := range typeNames {
		m[name] = TypeCode(code)
	}
	return m
}()

// EncodeType maps an element type tag to its code.
func EncodeType(tag string) (TypeCode, error) {
	code, ok := typeCodes[tag]
	if !ok {
		return 0, fmt.Errorf("unknown element type %q", tag)
	}
	return code, nil
}

// DecodeType maps a code back to its element type tag.
func DecodeType(code TypeCode) (string, error) {
	if code < 0 || int(code) >= len(typeNames) {
		return "", fmt.Errorf("unknown element type code %d", int(code))
	}
	return typeNames[code], nil
}
