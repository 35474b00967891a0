package inventory

// OperationLog é a pilha LIFO de registros de undo.
//
// Com limit > 0 os registros mais antigos além do limite são descartados; o mais recente
// sempre fica, então o undo da última operação nunca é afetado pela retenção.
type OperationLog struct {
	records []Operation
	nextSeq uint64
	limit   int
}

// NewOperationLog cria um log vazio. limit <= 0 significa sem limite.
func NewOperationLog(limit int) *OperationLog {
	return &OperationLog{nextSeq: 1, limit: limit}
}

// Push empilha o registro, atribuindo o número de sequência, e o retorna.
func (l *OperationLog) Push(op Operation) Operation {
	op.Sequence = l.nextSeq
	l.nextSeq++
	l.records = append(l.records, op)

	if l.limit > 0 && len(l.records) > l.limit {
		drop := len(l.records) - l.limit
		clear(l.records[:drop])
		l.records = l.records[drop:]
	}
	return op
}

// Peek retorna o registro do topo sem removê-lo
func (l *OperationLog) Peek() (Operation, error) {
	if len(l.records) == 0 {
		return Operation{}, newError(KindEmptyLog, "no operations to undo")
	}
	return l.records[len(l.records)-1], nil
}

// Pop remove e retorna o registro do topo
func (l *OperationLog) Pop() (Operation, error) {
	op, err := l.Peek()
	if err != nil {
		return Operation{}, err
	}
	l.records[len(l.records)-1] = Operation{}
	l.records = l.records[:len(l.records)-1]
	return op, nil
}

// Recent retorna os n registros mais recentes, do mais novo para o mais antigo.
func (l *OperationLog) Recent(n int) []Operation {
	if n <= 0 {
		return []Operation{}
	}
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Operation, 0, n)
	for i := len(l.records) - 1; i >= len(l.records)-n; i-- {
		out = append(out, l.records[i])
	}
	return out
}

// Len retorna o número de registros retidos
func (l *OperationLog) Len() int {
	return len(l.records)
}
