package usecase

import (
	"sort"

	"cognition-berries/services/api/internal/entity"
)

// BuildThread arranges a post's flat replies into a tree. Replies without a
// known parent become roots, siblings are ordered by creation time, and a
// reply caught in a parent cycle is promoted to a root so every reply is
// returned exactly once.
func BuildThread(replies []*entity.ForumReply) []*entity.ThreadNode {
	ordered := make([]*entity.ForumReply, 0, len(replies))
	byID := make(map[string]*entity.ForumReply, len(replies))
	for _, r := range replies {
		if r == nil {
			continue
		}
		if _, dup := byID[r.ID]; dup {
			continue
		}
		byID[r.ID] = r
		ordered = append(ordered, r)
	}
	sortReplies(ordered)

	parent := make(map[string]string, len(ordered))
	for _, r := range ordered {
		if _, ok := byID[r.ParentReplyID]; ok && r.ParentReplyID != r.ID {
			parent[r.ID] = r.ParentReplyID
		}
	}
	breakCycles(ordered, parent)

	children := make(map[string][]*entity.ForumReply)
	var roots []*entity.ForumReply
	for _, r := range ordered {
		if p, ok := parent[r.ID]; ok {
			children[p] = append(children[p], r)
			continue
		}
		roots = append(roots, r)
	}

	var build func(r *entity.ForumReply, depth int) *entity.ThreadNode
	build = func(r *entity.ForumReply, depth int) *entity.ThreadNode {
		node := &entity.ThreadNode{
			ForumReply: *r,
			Depth:      depth,
			CanReply:   depth < entity.MaxReplyDepth,
			Children:   []*entity.ThreadNode{},
		}
		for _, child := range children[r.ID] {
			node.Children = append(node.Children, build(child, depth+1))
		}
		return node
	}

	thread := make([]*entity.ThreadNode, 0, len(roots))
	for _, r := range roots {
		thread = append(thread, build(r, 0))
	}
	return thread
}

func sortReplies(replies []*entity.ForumReply) {
	sort.SliceStable(replies, func(i, j int) bool {
		if replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].ID < replies[j].ID
		}
		return replies[i].CreatedAt.Before(replies[j].CreatedAt)
	})
}

// breakCycles detaches the earliest member of every parent cycle. ordered
// must already be sorted.
func breakCycles(ordered []*entity.ForumReply, parent map[string]string) {
	rank := make(map[string]int, len(ordered))
	for i, r := range ordered {
		rank[r.ID] = i
	}

	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(ordered))

	for _, r := range ordered {
		if state[r.ID] == done {
			continue
		}
		var path []string
		id := r.ID
		for {
			if state[id] == done {
				break
			}
			if state[id] == inProgress {
				// id closes a cycle; its members are the tail of path from id.
				start := 0
				for i, p := range path {
					if p == id {
						start = i
						break
					}
				}
				earliest := path[start]
				for _, member := range path[start:] {
					if rank[member] < rank[earliest] {
						earliest = member
					}
				}
				delete(parent, earliest)
				break
			}
			state[id] = inProgress
			path = append(path, id)
			next, ok := parent[id]
			if !ok {
				break
			}
			id = next
		}
		for _, p := range path {
			state[p] = done
		}
	}
}
