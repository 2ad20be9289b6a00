package intersection

import "time"

type queueEntry struct {
	id  uint64
	seq uint64
	at  time.Time
}

// Arbiter решает, какая машина может занять перекрёсток.
// Одновременно внутри не больше одной машины; очередь общая для всех
// направлений и упорядочена по номеру прибытия.
type Arbiter struct {
	minStop time.Duration

	// queue отсортирована по seq: номера выдаются по возрастанию
	// и сразу дописываются в конец
	queue   []queueEntry
	nextSeq uint64

	occupant    uint64
	hasOccupant bool
}

// NewArbiter создаёт арбитра с минимальным временем стоянки
func NewArbiter(minStop time.Duration) *Arbiter {
	return &Arbiter{minStop: minStop}
}

// Arrive регистрирует остановку машины и выдаёт ей следующий номер прибытия
func (a *Arbiter) Arrive(id uint64, now time.Time) uint64 {
	a.nextSeq++
	a.queue = append(a.queue, queueEntry{id: id, seq: a.nextSeq, at: now})
	return a.nextSeq
}

// RequestCrossing разрешает проезд, если перекрёсток свободен, машина
// первая в очереди и простояла не меньше minStop. При отказе ничего не меняется.
func (a *Arbiter) RequestCrossing(v *Vehicle, now time.Time) bool {
	if v == nil || v.State() != Queued {
		return false
	}
	if a.hasOccupant || len(a.queue) == 0 {
		return false
	}

	head := a.queue[0]
	if head.id != v.ID() {
		return false
	}
	if now.Sub(head.at) < a.minStop {
		return false
	}

	a.queue[0] = queueEntry{}
	a.queue = a.queue[1:]
	a.occupant = head.id
	a.hasOccupant = true
	return true
}

// Release освобождает перекрёсток, если его занимает именно id
func (a *Arbiter) Release(id uint64) {
	if a.hasOccupant && a.occupant == id {
		a.occupant = 0
		a.hasOccupant = false
	}
}

// Occupant текущая машина на перекрёстке
func (a *Arbiter) Occupant() (uint64, bool) {
	return a.occupant, a.hasOccupant
}

// Queue id ожидающих машин в порядке права проезда
func (a *Arbiter) Queue() []uint64 {
	ids := make([]uint64, len(a.queue))
	for i, e := range a.queue {
		ids[i] = e.id
	}
	return ids
}

// Reset очищает очередь, счётчик прибытий и освобождает перекрёсток
func (a *Arbiter) Reset() {
	a.queue = nil
	a.nextSeq = 0
	a.occupant = 0
	a.hasOccupant = false
}
