package selection

import "github.com/Spok95/barber-kiosk/internal/domain/catalog"

// DefaultMinSelections — сколько полей деталей стрижки должно быть
// выбрано, чтобы пустить клиента дальше. Порог настраивается через
// конфиг (wizard.min_haircut_selections), это дефолт.
const DefaultMinSelections = 2

// Availability — что доступно на экране деталей стрижки при текущем
// стиле и выборе. Списки — отфильтрованные по таблице конфигов
// подмножества каталога.
type Availability struct {
	Methods    []catalog.StyleOption `json:"methods"`
	SideStyles []catalog.StyleOption `json:"sideStyles"`
	Finishes   []catalog.StyleOption `json:"finishes"`

	ShowFadeType      bool `json:"showFadeType"`
	ShowMachineHeight bool `json:"showMachineHeight"`
	ShowScissorHeight bool `json:"showScissorHeight"`
}

func filterByIDs(t catalog.OptionType, ids []string) []catalog.StyleOption {
	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}
	out := make([]catalog.StyleOption, 0, len(ids))
	for _, o := range catalog.Options(t) {
		if _, ok := allowed[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Resolve считает доступность секций деталей для текущего выбора.
//
// Секция «Топо» — исключение поверх таблицы: высота под ножницы
// ортогональна осям метод/бока/финиш, поэтому показывается по методу
// scissors либо для стилей fade и social.
// Высота машинки прячется для fade: там вместо неё тип деградэ.
func Resolve(sel Selection) Availability {
	styleID := catalog.DefaultStyleID
	if sel.HaircutStyle != nil && sel.HaircutStyle.ID != "" {
		styleID = sel.HaircutStyle.ID
	}
	cfg := catalog.ConfigFor(styleID)

	av := Availability{
		Methods:    filterByIDs(catalog.TypeMethod, cfg.Methods),
		SideStyles: filterByIDs(catalog.TypeSideStyle, cfg.SideStyles),
		Finishes:   filterByIDs(catalog.TypeFinishStyle, cfg.FinishStyles),
	}
	av.ShowFadeType = styleID == "fade"
	av.ShowMachineHeight = sel.HaircutDetails.Method == "machine" && styleID != "fade"
	av.ShowScissorHeight = sel.HaircutDetails.Method == "scissors" ||
		styleID == "fade" || styleID == "social"
	return av
}

// AutoResolve доставляет в выбор поля, у которых осталась ровно одна
// доступная опция. Идемпотентно; вызывается после каждой смены стиля
// или деталей. Пустые списки ничего не трогают — киоск такие секции
// просто не показывает.
func AutoResolve(m *Machine) Selection {
	sel := m.Selection()
	av := Resolve(sel)

	p := HaircutPatch{}
	changed := false
	if len(av.Methods) == 1 && sel.HaircutDetails.Method != av.Methods[0].ID {
		p.Method = &av.Methods[0].ID
		changed = true
	}
	if len(av.SideStyles) == 1 && sel.HaircutDetails.SideStyle != av.SideStyles[0].ID {
		p.SideStyle = &av.SideStyles[0].ID
		changed = true
	}
	if len(av.Finishes) == 1 && sel.HaircutDetails.Finish != av.Finishes[0].ID {
		p.Finish = &av.Finishes[0].ID
		changed = true
	}
	if !changed {
		return sel
	}
	return m.SetHaircutDetails(p)
}

// SelectionCount — сколько полей деталей стрижки выбрано.
func SelectionCount(d HaircutDetails) int {
	n := 0
	for _, v := range []string{d.Method, d.MachineHeight, d.ScissorHeight, d.FadeType, d.SideStyle, d.Finish} {
		if v != "" {
			n++
		}
	}
	return n
}

// Complete — можно ли продолжать с экрана деталей стрижки.
func Complete(d HaircutDetails, minSelections int) bool {
	if minSelections <= 0 {
		minSelections = DefaultMinSelections
	}
	return SelectionCount(d) >= minSelections
}

// AllowedHaircutDetail проверяет, что значение поля входит в домен,
// объявленный резолвером для текущего стиля.
func AllowedHaircutDetail(av Availability, f DetailField, id string) bool {
	in := func(opts []catalog.StyleOption) bool {
		for _, o := range opts {
			if o.ID == id {
				return true
			}
		}
		return false
	}
	switch f {
	case FieldMethod:
		return in(av.Methods)
	case FieldSideStyle:
		return in(av.SideStyles)
	case FieldFinish:
		return in(av.Finishes)
	case FieldMachineHeight:
		_, ok := catalog.Find(catalog.TypeMachineHeight, id)
		return ok
	case FieldFadeType:
		_, ok := catalog.Find(catalog.TypeFadeType, id)
		return ok
	case FieldScissorHeight:
		_, ok := catalog.Find(catalog.TypeScissorHeight, id)
		return ok
	}
	return false
}

// AllowedBeardDetail — то же для полей бороды (фильтрации по стилю
// бороды нет, домен — весь каталог категории).
func AllowedBeardDetail(f DetailField, id string) bool {
	switch f {
	case FieldBeardHeight:
		_, ok := catalog.Find(catalog.TypeBeardHeight, id)
		return ok
	case FieldBeardContour:
		_, ok := catalog.Find(catalog.TypeBeardContour, id)
		return ok
	}
	return false
}
