package selection

import "github.com/Spok95/barber-kiosk/internal/domain/catalog"

// ServiceType — что клиент выбрал на первом экране.
type ServiceType string

const (
	ServiceHair  ServiceType = "hair"
	ServiceBeard ServiceType = "beard"
	ServiceBoth  ServiceType = "both"
)

func (t ServiceType) Valid() bool {
	return t == ServiceHair || t == ServiceBeard || t == ServiceBoth
}

// HaircutDetails — детали стрижки. Пустая строка = не выбрано.
type HaircutDetails struct {
	Method        string `json:"method,omitempty"`
	MachineHeight string `json:"machineHeight,omitempty"`
	FadeType      string `json:"fadeType,omitempty"`
	SideStyle     string `json:"sideStyle,omitempty"`
	Finish        string `json:"finish,omitempty"`
	ScissorHeight string `json:"scissorHeight,omitempty"`
}

// BeardDetails — детали бороды.
type BeardDetails struct {
	Height  string `json:"height,omitempty"`
	Contour string `json:"contour,omitempty"`
}

// Selection — текущий выбор клиента за сессию киоска.
// Мутации — только через операции Machine.
type Selection struct {
	ServiceType    ServiceType          `json:"serviceType,omitempty"`
	HaircutStyle   *catalog.StyleOption `json:"haircutStyle,omitempty"`
	HaircutDetails HaircutDetails       `json:"haircutDetails"`
	BeardStyle     *catalog.StyleOption `json:"beardStyle,omitempty"`
	BeardDetails   BeardDetails         `json:"beardDetails"`
}

// Clone — глубокая копия, чтобы наружу не утекали указатели на
// внутреннее состояние машины.
func (s Selection) Clone() Selection {
	out := s
	if s.HaircutStyle != nil {
		st := *s.HaircutStyle
		out.HaircutStyle = &st
	}
	if s.BeardStyle != nil {
		st := *s.BeardStyle
		out.BeardStyle = &st
	}
	return out
}

// HaircutPatch — частичное обновление деталей стрижки.
// nil — поле не трогаем, пустая строка — сбрасываем.
type HaircutPatch struct {
	Method        *string
	MachineHeight *string
	FadeType      *string
	SideStyle     *string
	Finish        *string
	ScissorHeight *string
}

// BeardPatch — частичное обновление деталей бороды.
type BeardPatch struct {
	Height  *string
	Contour *string
}

// DetailField — имя поля деталей для toggle-операций.
type DetailField string

const (
	FieldMethod        DetailField = "method"
	FieldMachineHeight DetailField = "machineHeight"
	FieldFadeType      DetailField = "fadeType"
	FieldSideStyle     DetailField = "sideStyle"
	FieldFinish        DetailField = "finish"
	FieldScissorHeight DetailField = "scissorHeight"
	FieldBeardHeight   DetailField = "height"
	FieldBeardContour  DetailField = "contour"
)

func (d HaircutDetails) field(f DetailField) (string, bool) {
	switch f {
	case FieldMethod:
		return d.Method, true
	case FieldMachineHeight:
		return d.MachineHeight, true
	case FieldFadeType:
		return d.FadeType, true
	case FieldSideStyle:
		return d.SideStyle, true
	case FieldFinish:
		return d.Finish, true
	case FieldScissorHeight:
		return d.ScissorHeight, true
	}
	return "", false
}

func (d BeardDetails) field(f DetailField) (string, bool) {
	switch f {
	case FieldBeardHeight:
		return d.Height, true
	case FieldBeardContour:
		return d.Contour, true
	}
	return "", false
}

// Progress — индикатор шагов для шапки экрана. Total зависит только
// от выбранного типа услуги, Current задаёт сам экран.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}
