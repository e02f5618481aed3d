package catalog

import "fmt"

// OptionType — категория опции каталога.
type OptionType string

const (
	TypeHairStyle     OptionType = "hair-style"
	TypeBeardStyle    OptionType = "beard-style"
	TypeMethod        OptionType = "haircut-method"
	TypeMachineHeight OptionType = "machine-height"
	TypeFadeType      OptionType = "fade-type"
	TypeSideStyle     OptionType = "side-style"
	TypeFinishStyle   OptionType = "finish-style"
	TypeScissorHeight OptionType = "scissor-height"
	TypeBeardHeight   OptionType = "beard-height"
	TypeBeardContour  OptionType = "beard-contour"
)

// Valid сообщает, известна ли категория.
func (t OptionType) Valid() bool {
	switch t {
	case TypeHairStyle, TypeBeardStyle, TypeMethod, TypeMachineHeight,
		TypeFadeType, TypeSideStyle, TypeFinishStyle, TypeScissorHeight,
		TypeBeardHeight, TypeBeardContour:
		return true
	}
	return false
}

// StyleOption — одна позиция каталога. ImageURL заполняется только
// после мержа с пользовательскими переопределениями.
type StyleOption struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	Icon         string `json:"icon"`
	Description  string `json:"description,omitempty"`
	DefaultImage string `json:"defaultImage,omitempty"`
	ImageURL     string `json:"imageUrl,omitempty"`
}

// StyleConfig — допустимые подопции для конкретного стиля стрижки.
// Пустой список — секция скрыта целиком.
type StyleConfig struct {
	Methods      []string
	SideStyles   []string
	FinishStyles []string
}

// DefaultStyleID — ключ fallback-записи таблицы конфигов.
const DefaultStyleID = "default"

// Options возвращает все позиции каталога данной категории.
// Неизвестная категория — ошибка программирования, падаем громко.
func Options(t OptionType) []StyleOption {
	opts, ok := byType[t]
	if !ok {
		panic(fmt.Sprintf("catalog: неизвестная категория %q", t))
	}
	out := make([]StyleOption, len(opts))
	copy(out, opts)
	return out
}

// Find ищет позицию по категории и id.
func Find(t OptionType, id string) (StyleOption, bool) {
	opts, ok := byType[t]
	if !ok {
		panic(fmt.Sprintf("catalog: неизвестная категория %q", t))
	}
	for _, o := range opts {
		if o.ID == id {
			return o, true
		}
	}
	return StyleOption{}, false
}

// LabelFor — подпись для id, либо "-" если не выбрано/не найдено.
func LabelFor(t OptionType, id string) string {
	if id == "" {
		return "-"
	}
	if o, ok := Find(t, id); ok {
		return o.Label
	}
	return "-"
}

// ConfigFor возвращает конфиг для стиля, либо дефолтный,
// если отдельной записи для styleID нет (в т.ч. при пустом styleID).
func ConfigFor(styleID string) StyleConfig {
	if cfg, ok := styleConfigs[styleID]; ok {
		return cfg
	}
	return styleConfigs[DefaultStyleID]
}
