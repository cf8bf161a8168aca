package github

import (
	"strings"
	"time"
)

// The API returns much larger objects than these — we only unmarshal the
// fields the quiz needs.

// Organization is one entry from /user/orgs.
type Organization struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Description string `json:"description"`
}

// Member is one entry from /orgs/{org}/members. Login doubles as the
// answer key during play.
type Member struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Repository is one entry from /orgs/{org}/repos.
type Repository struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Private  bool   `json:"private"`
	HTMLURL  string `json:"html_url"`
}

// Branch is one entry from /repos/{full_name}/branches.
type Branch struct {
	Name string `json:"name"`
}

// Commit is one entry from /repos/{full_name}/commits. The interesting
// parts are split between the git-level detail and the linked profile:
// Detail carries the message and author identity recorded in the commit
// itself, while Author is the GitHub account the API matched to it.
// Author is null when no account could be matched.
type Commit struct {
	SHA     string       `json:"sha"`
	HTMLURL string       `json:"html_url"`
	Detail  CommitDetail `json:"commit"`
	Author  *Member      `json:"author"`
}

// CommitDetail is the nested "commit" object.
type CommitDetail struct {
	Message string       `json:"message"`
	Author  CommitAuthor `json:"author"`
}

// CommitAuthor is the git-level identity stamped on a commit.
type CommitAuthor struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// AuthorLogin returns the login of the matched GitHub account, or "" when
// the API could not attribute the commit.
func (c Commit) AuthorLogin() string {
	if c.Author == nil {
		return ""
	}
	return c.Author.Login
}

// Message returns the commit message with surrounding whitespace removed.
func (c Commit) Message() string {
	return strings.TrimSpace(c.Detail.Message)
}

// Subject returns the first line of the commit message.
func (c Commit) Subject() string {
	msg := c.Message()
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		return strings.TrimSpace(msg[:idx])
	}
	return msg
}
