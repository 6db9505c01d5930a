package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/virtualta/virtualta/pkg/types"
)

// DefaultDiscourseBaseURL is the forum the scraper export points at.
// Chunk sources link to the topic, not individual posts.
const DefaultDiscourseBaseURL = "https://discourse.onlinedegree.iitm.ac.in"

// postSeparator joins consecutive posts of one topic.
const postSeparator = "\n\n---\n\n"

// DiscoursePost is one record of the scraper's JSON export. The
// export carries more fields (author, timestamps, like counts); only
// the ones the pipeline needs are decoded.
type DiscoursePost struct {
	TopicID    int64  `json:"topic_id"`
	TopicTitle string `json:"topic_title"`
	PostNumber int    `json:"post_number"`
	Content    string `json:"content"`
}

// LoadDiscourseFile reads a discourse export and returns one document
// per topic. A missing file yields no documents; markdown may be the
// only source present.
func LoadDiscourseFile(path, baseURL string) ([]types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read discourse export: %w", err)
	}

	var posts []DiscoursePost
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("parse discourse export: %w", err)
	}
	return GroupDiscoursePosts(posts, baseURL), nil
}

// GroupDiscoursePosts merges posts into one logical document per
// topic: posts are ordered by post number and concatenated with
// separators under a topic header, so replies keep the context of the
// conversation they answer. Topics are emitted in ascending id order
// for deterministic corpora.
func GroupDiscoursePosts(posts []DiscoursePost, baseURL string) []types.Document {
	if baseURL == "" {
		baseURL = DefaultDiscourseBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	topics := make(map[int64][]DiscoursePost)
	titles := make(map[int64]string)
	for _, p := range posts {
		topics[p.TopicID] = append(topics[p.TopicID], p)
		if titles[p.TopicID] == "" {
			titles[p.TopicID] = p.TopicTitle
		}
	}

	ids := make([]int64, 0, len(topics))
	for id := range topics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	docs := make([]types.Document, 0, len(ids))
	for _, id := range ids {
		topicPosts := topics[id]
		sort.SliceStable(topicPosts, func(i, j int) bool {
			return topicPosts[i].PostNumber < topicPosts[j].PostNumber
		})

		title := titles[id]
		if title == "" {
			title = "N/A"
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Topic: %s\n\n", title)
		for i, p := range topicPosts {
			if i > 0 {
				b.WriteString(postSeparator)
			}
			fmt.Fprintf(&b, "Post #%d: %s", p.PostNumber, p.Content)
		}

		docs = append(docs, types.Document{
			Text:       b.String(),
			Source:     fmt.Sprintf("%s/t/%d", baseURL, id),
			Type:       types.SourceDiscoursePost,
			TopicID:    id,
			TopicTitle: title,
		})
	}
	return docs
}
