package catalog

// Справочные данные каталога. Иконки — имена из набора lucide,
// рендерятся на стороне киоска.

var hairStyles = []StyleOption{
	{ID: "social", Label: "Social", Icon: "User", Description: "Corte clássico e elegante", DefaultImage: "/images/haircuts/social.jpg"},
	{ID: "fade", Label: "Degradê", Icon: "TrendingDown", Description: "Corte com transição suave", DefaultImage: "/images/haircuts/fade.jpg"},
}

var beardStyles = []StyleOption{
	{ID: "social", Label: "Barba Social", Icon: "User", Description: "Barba alinhada e clássica", DefaultImage: "/images/beards/full.jpg"},
	{ID: "fade-beard", Label: "Degradê", Icon: "TrendingDown", Description: "Transição suave do cabelo", DefaultImage: "/images/beards/fade-beard.jpg"},
	{ID: "clean", Label: "Limpa", Icon: "Sparkles", Description: "Rosto completamente liso", DefaultImage: "/images/beards/clean.jpg"},
	{ID: "goatee", Label: "Cavanhaque", Icon: "Triangle", Description: "Apenas queixo e bigode", DefaultImage: "/images/beards/goatee.jpg"},
}

var cuttingMethods = []StyleOption{
	{ID: "scissors", Label: "Tesoura", Icon: "Scissors"},
	{ID: "machine", Label: "Máquina", Icon: "Zap"},
}

var machineHeights = []StyleOption{
	{ID: "0.5", Label: "0.5", Icon: "Ruler"},
	{ID: "1.0", Label: "1.0", Icon: "Ruler"},
	{ID: "1.5", Label: "1.5", Icon: "Ruler"},
	{ID: "2", Label: "2", Icon: "Ruler"},
	{ID: "3", Label: "3", Icon: "Ruler"},
	{ID: "4", Label: "4", Icon: "Ruler"},
}

var scissorHeights = []StyleOption{
	{ID: "high", Label: "Alto", Icon: "ArrowUp"},
	{ID: "medium", Label: "Médio", Icon: "Minus"},
	{ID: "low", Label: "Baixo", Icon: "ArrowDown"},
}

var sideStyles = []StyleOption{
	{ID: "fade", Label: "Degradê", Icon: "TrendingDown"},
	{ID: "straight", Label: "Reto", Icon: "Minus"},
	{ID: "zero", Label: "0", Icon: "Circle"},
	{ID: "zero_half", Label: "0.5", Icon: "Disc"},
	{ID: "razor", Label: "Navalhado", Icon: "Slash"},
}

var fadeTypes = []StyleOption{
	{ID: "high", Label: "High Fade", Icon: "ArrowUp", Description: "Degradê alto"},
	{ID: "mid", Label: "Mid Fade", Icon: "Minus", Description: "Degradê médio"},
	{ID: "low", Label: "Low Fade", Icon: "ArrowDown", Description: "Degradê baixo"},
}

var finishStyles = []StyleOption{
	{ID: "natural", Label: "Natural", Icon: "Leaf"},
	{ID: "defined", Label: "Marcado", Icon: "Target"},
}

var beardHeights = []StyleOption{
	{ID: "short", Label: "Curta", Icon: "Minus"},
	{ID: "medium", Label: "Média", Icon: "Equal"},
	{ID: "long", Label: "Longa", Icon: "Menu"},
}

var beardContours = []StyleOption{
	{ID: "natural", Label: "Natural", Icon: "Leaf"},
	{ID: "defined", Label: "Marcado", Icon: "Target"},
}

var byType = map[OptionType][]StyleOption{
	TypeHairStyle:     hairStyles,
	TypeBeardStyle:    beardStyles,
	TypeMethod:        cuttingMethods,
	TypeMachineHeight: machineHeights,
	TypeFadeType:      fadeTypes,
	TypeSideStyle:     sideStyles,
	TypeFinishStyle:   finishStyles,
	TypeScissorHeight: scissorHeights,
	TypeBeardHeight:   beardHeights,
	TypeBeardContour:  beardContours,
}

// Таблица опций по стилю стрижки. Запись "default" применяется
// к любому стилю без отдельной записи.
var styleConfigs = map[string]StyleConfig{
	"fade": {
		Methods:      []string{"machine"},
		SideStyles:   []string{"zero", "zero_half", "razor"},
		FinishStyles: []string{"defined"},
	},
	"social": {
		Methods:      []string{"scissors", "machine"},
		SideStyles:   []string{},
		FinishStyles: []string{"natural", "defined"},
	},
	DefaultStyleID: {
		Methods:      []string{"scissors", "machine"},
		SideStyles:   []string{"fade", "straight", "razor"},
		FinishStyles: []string{"natural", "defined"},
	},
}
