package engine

import (
	"sort"
)

type Priority int

const (
	PriorityFirst Priority = iota
	PriorityNormal
	PriorityLast
)

type subchan struct {
	c chan<- interface{}
	p Priority
}

type msgchan struct {
	c chan<- interface{}
	m interface{}
}

// Observer fans published messages out to subscribed channels, lowest
// priority first. Publishing never blocks on slow subscribers; undelivered
// messages queue up per observer.
type Observer struct {
	sub   chan subchan
	unsub chan chan<- interface{}
	in    chan interface{}
	quit  chan struct{}

	subs   []chan<- interface{}
	prio   map[chan<- interface{}]Priority
	update bool

	send    chan msgchan
	pending []msgchan
}

func NewObserver() *Observer {
	o := &Observer{
		sub:   make(chan subchan),
		unsub: make(chan chan<- interface{}),
		in:    make(chan interface{}),
		quit:  make(chan struct{}),

		prio: make(map[chan<- interface{}]Priority),

		send: make(chan msgchan),
	}

	// subscription
	go func() {
		for {
			select {
			case <-o.quit:
				return
			case sc := <-o.sub:
				o.subs = append(o.subs, sc.c)
				o.prio[sc.c] = sc.p
				o.update = true
			case c := <-o.unsub:
				for i, f := range o.subs {
					if f == c {
						l := len(o.subs)
						copy(o.subs[i:], o.subs[i+1:])
						o.subs[l-1] = nil
						o.subs = o.subs[:l-1]
						delete(o.prio, c)
						break
					}
				}
			case m := <-o.in:
				if o.update {
					sort.Stable(byPriority{o.subs, o.prio})
					o.update = false
				}
				for _, c := range o.subs {
					select {
					case o.send <- msgchan{c, m}:
					case <-o.quit:
						return
					}
				}
			}
		}
	}()

	// non blocking send
	go func() {
		for {
			if len(o.pending) == 0 {
				select {
				case mc := <-o.send:
					o.pending = append(o.pending, mc)
				case <-o.quit:
					return
				}
			}
			select {
			case mc := <-o.send:
				o.pending = append(o.pending, mc)
			case o.pending[0].c <- o.pending[0].m:
				o.pending[0] = msgchan{}
				o.pending = o.pending[1:]
			case <-o.quit:
				return
			}
		}
	}()

	return o
}

func (o *Observer) Subscribe(c chan<- interface{}, p Priority) {
	select {
	case o.sub <- subchan{c, p}:
	case <-o.quit:
	}
}

func (o *Observer) Unsubscribe(c chan<- interface{}) {
	select {
	case o.unsub <- c:
	case <-o.quit:
	}
}

// Publish is a no-op once the observer is closed.
func (o *Observer) Publish(msg interface{}) {
	select {
	case o.in <- msg:
	case <-o.quit:
	}
}

// Close stops delivery, queued messages are dropped.
func (o *Observer) Close() {
	select {
	case <-o.quit:
	default:
		close(o.quit)
	}
}

// byPriority attaches the methods of sort.Interface to []subs, sorting in increasing order of map[]prio
type byPriority struct {
	subs []chan<- interface{}
	prio map[chan<- interface{}]Priority
}

func (s byPriority) Len() int {
	return len(s.subs)
}
func (s byPriority) Swap(i, j int) {
	s.subs[i], s.subs[j] = s.subs[j], s.subs[i]
}
func (s byPriority) Less(i, j int) bool {
	return s.prio[s.subs[i]] < s.prio[s.subs[j]]
}
