package employee

// Position は職位を表します。取りうる値は Positions が返す閉じた集合です。
type Position string

const (
	PositionProfessor              Position = "Professor"
	PositionRHU                    Position = "RHU"
	PositionDirecao                Position = "Direção"
	PositionCoordenador            Position = "Coordenador"
	PositionSecretaria             Position = "Secretaria"
	PositionAtendimento            Position = "Atendimento"
	PositionFinanceiro             Position = "Financeiro"
	PositionLimpeza                Position = "Limpeza"
	PositionManutencao             Position = "Manutenção"
	PositionMarketing              Position = "Marketing"
	PositionTI                     Position = "TI"
	PositionAuxiliarAdministrativo Position = "Auxiliar Administrativo"
)

// DefaultPosition は職位未指定時に使われる値です。
const DefaultPosition = PositionProfessor

var positions = []Position{
	PositionProfessor,
	PositionRHU,
	PositionDirecao,
	PositionCoordenador,
	PositionSecretaria,
	PositionAtendimento,
	PositionFinanceiro,
	PositionLimpeza,
	PositionManutencao,
	PositionMarketing,
	PositionTI,
	PositionAuxiliarAdministrativo,
}

// Positions は職位の一覧を表示順で返します。
func Positions() []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	return out
}

// IsValid は職位が既知の値かどうかを返します。
func (p Position) IsValid() bool {
	for _, known := range positions {
		if p == known {
			return true
		}
	}
	return false
}

// Employee は社員エンティティです。Code は作成時に一度だけ払い出される PIN です。
type Employee struct {
	ID       string
	Name     string
	Position Position
	Code     string
}
