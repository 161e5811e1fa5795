// Package console is the interactive menu front end over the blog services.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"inkwell/app/models"
	"inkwell/app/services"
	"inkwell/app/views"

	"github.com/rs/zerolog"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"

	// commentLimit caps comment listings and selections.
	commentLimit = 20
)

// App runs the menus. Each menu action loads what it shows through the
// services, so it always reflects committed state.
type App struct {
	blog     *services.Blog
	prompt   Prompter
	out      io.Writer
	theme    Theme
	markdown Markdown
	logger   zerolog.Logger
}

type Option func(*App)

// WithMarkdown replaces the renderer used for post bodies.
func WithMarkdown(md Markdown) Option {
	return func(a *App) {
		a.markdown = md
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

func New(blog *services.Blog, prompt Prompter, out io.Writer, opts ...Option) *App {
	a := &App{
		blog:     blog,
		prompt:   prompt,
		out:      out,
		theme:    NewTheme(out),
		markdown: PlainMarkdown,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type action struct {
	label string
	run   func(ctx context.Context) error
}

// Run shows the main menu until Exit is chosen or input ends.
func (a *App) Run(ctx context.Context) error {
	for {
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, a.theme.Banner.Render("BLOG MANAGEMENT"))

		done, err := a.menu(ctx, "What would you like to manage?", "Exit", []action{
			{"Authors", a.authorsMenu},
			{"Posts", a.postsMenu},
			{"Comments", a.commentsMenu},
		}, true)
		if errors.Is(err, io.EOF) {
			done, err = true, nil
		}
		if err != nil {
			return err
		}
		if done {
			fmt.Fprintln(a.out, a.theme.Success.Render("\nGoodbye!"))
			return nil
		}
	}
}

// menu offers actions plus a trailing exit entry. With once set it returns
// after a single action; otherwise it loops until the exit entry is chosen.
// done reports whether the exit entry was picked.
func (a *App) menu(ctx context.Context, title, exit string, actions []action, once bool) (done bool, err error) {
	labels := make([]string, 0, len(actions)+1)
	for _, act := range actions {
		labels = append(labels, act.label)
	}
	labels = append(labels, exit)

	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		i, err := a.prompt.Select(title, labels)
		if err != nil {
			return false, err
		}
		if i == len(actions) {
			return true, nil
		}
		if err := a.perform(ctx, actions[i].run); err != nil {
			return false, err
		}
		if once {
			return false, nil
		}
	}
}

// perform runs one action. Rejected input and vanished records are reported
// and the menu carries on; anything else ends the session.
func (a *App) perform(ctx context.Context, run func(context.Context) error) error {
	err := run(ctx)
	if err == nil {
		return nil
	}

	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		a.failure(verr.Errors.Error())
	case errors.Is(err, services.ErrNotFound):
		a.failure(err.Error())
	default:
		if !errors.Is(err, io.EOF) {
			a.logger.Error().Err(err).Msg("console action failed")
		}
		return err
	}
	return a.prompt.Pause()
}

func (a *App) success(msg string) {
	fmt.Fprintln(a.out, a.theme.Success.Render("\n✓ "+msg))
}

func (a *App) failure(msg string) {
	fmt.Fprintln(a.out, a.theme.Error.Render("\n✗ Error: "+msg))
}

func (a *App) notice(msg string) {
	fmt.Fprintln(a.out, a.theme.Warning.Render("\n"+msg))
}

func (a *App) heading(title string) {
	fmt.Fprintln(a.out, a.theme.Heading.Render("\n═══ "+title+" ═══"))
}

// pick offers labels plus Cancel and returns the chosen index, or -1 when
// the user cancels or there is nothing to choose from.
func (a *App) pick(title, empty string, labels []string) (int, error) {
	if len(labels) == 0 {
		a.notice(empty)
		return -1, a.prompt.Pause()
	}
	i, err := a.prompt.Select(title, append(labels, "← Cancel"))
	if err != nil {
		return -1, err
	}
	if i == len(labels) {
		return -1, nil
	}
	return i, nil
}

// ============ Authors ============

func (a *App) authorsMenu(ctx context.Context) error {
	_, err := a.menu(ctx, "Authors Menu:", "← Back", []action{
		{"List all authors", a.listAuthors},
		{"View author details", a.showAuthor},
		{"Create new author", a.createAuthor},
		{"Edit author", a.editAuthor},
		{"Delete author", a.deleteAuthor},
	}, false)
	return err
}

func (a *App) listAuthors(ctx context.Context) error {
	authors, err := a.blog.Authors.List(ctx)
	if err != nil {
		return err
	}
	if len(authors) == 0 {
		a.notice("No authors found.")
		return a.prompt.Pause()
	}

	rows := make([][]string, 0, len(authors))
	for _, au := range authors {
		bio := ""
		if au.Bio != nil {
			bio = truncate(*au.Bio, 30)
		}
		rows = append(rows, []string{strconv.Itoa(au.ID), au.Name, au.Email, bio})
	}
	fmt.Fprintln(a.out, "\n"+a.theme.Table([]string{"ID", "Name", "Email", "Bio"}, rows))
	return a.prompt.Pause()
}

func (a *App) selectAuthor(ctx context.Context) (*views.Author, error) {
	authors, err := a.blog.Authors.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(authors))
	for i, au := range authors {
		labels[i] = fmt.Sprintf("%d: %s (%s)", au.ID, au.Name, au.Email)
	}
	i, err := a.pick("Select an author:", "No authors available.", labels)
	if err != nil || i < 0 {
		return nil, err
	}
	return &authors[i], nil
}

func (a *App) showAuthor(ctx context.Context) error {
	selected, err := a.selectAuthor(ctx)
	if err != nil || selected == nil {
		return err
	}
	author, err := a.blog.Authors.Get(ctx, selected.ID)
	if err != nil {
		return err
	}

	bio := "N/A"
	if author.Bio != nil {
		bio = *author.Bio
	}
	a.heading("Author Details")
	fmt.Fprintf(a.out, "ID:      %d\n", author.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", author.Name)
	fmt.Fprintf(a.out, "Email:   %s\n", author.Email)
	fmt.Fprintf(a.out, "Bio:     %s\n", bio)
	fmt.Fprintf(a.out, "Posts:   %d\n", len(author.Posts))
	fmt.Fprintf(a.out, "Created: %s\n", author.CreatedAt.Local().Format(dateTimeLayout))
	return a.prompt.Pause()
}

func (a *App) createAuthor(ctx context.Context) error {
	a.heading("Create New Author")
	name, err := a.prompt.Ask("Name:", "")
	if err != nil {
		return err
	}
	email, err := a.prompt.Ask("Email:", "")
	if err != nil {
		return err
	}
	bio, err := a.prompt.Ask("Bio (optional):", "")
	if err != nil {
		return err
	}

	in := services.AuthorInput{Name: name, Email: email}
	if bio != "" {
		in.Bio = &bio
	}
	author, err := a.blog.Authors.Create(ctx, in)
	if err != nil {
		return err
	}
	a.success(fmt.Sprintf("Author '%s' created with ID %d", author.Name, author.ID))
	return a.prompt.Pause()
}

func (a *App) editAuthor(ctx context.Context) error {
	author, err := a.selectAuthor(ctx)
	if err != nil || author == nil {
		return err
	}

	a.heading("Edit Author")
	name, err := a.prompt.Ask("Name:", author.Name)
	if err != nil {
		return err
	}
	email, err := a.prompt.Ask("Email:", author.Email)
	if err != nil {
		return err
	}
	currentBio := ""
	if author.Bio != nil {
		currentBio = *author.Bio
	}
	bio, err := a.prompt.Ask("Bio:", currentBio)
	if err != nil {
		return err
	}

	patch := services.AuthorPatch{Name: models.Some(name), Email: models.Some(email)}
	if bio != "" {
		patch.Bio = models.Some(bio)
	}
	if _, err := a.blog.Authors.Update(ctx, author.ID, patch); err != nil {
		return err
	}
	a.success("Author updated successfully")
	return a.prompt.Pause()
}

func (a *App) deleteAuthor(ctx context.Context) error {
	author, err := a.selectAuthor(ctx)
	if err != nil || author == nil {
		return err
	}

	ok, err := a.prompt.Confirm(fmt.Sprintf("Delete author '%s' and all their posts?", author.Name))
	if err != nil {
		return err
	}
	if !ok {
		a.notice("Cancelled")
		return a.prompt.Pause()
	}
	if err := a.blog.Authors.Delete(ctx, author.ID); err != nil {
		return err
	}
	a.success("Author deleted")
	return a.prompt.Pause()
}

// ============ Posts ============

func (a *App) postsMenu(ctx context.Context) error {
	_, err := a.menu(ctx, "Posts Menu:", "← Back", []action{
		{"List all posts", a.listPosts},
		{"View post details", a.showPost},
		{"Create new post", a.createPost},
		{"Edit post", a.editPost},
		{"Publish/Unpublish post", a.togglePublish},
		{"Delete post", a.deletePost},
	}, false)
	return err
}

func (a *App) status(p views.Post) string {
	if p.Published() {
		return a.theme.Success.Render("Published")
	}
	return a.theme.Warning.Render("Draft")
}

func (a *App) listPosts(ctx context.Context) error {
	posts, err := a.blog.Posts.List(ctx, models.FilterAll)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		a.notice("No posts found.")
		return a.prompt.Pause()
	}

	rows := make([][]string, 0, len(posts))
	for _, p := range posts {
		rows = append(rows, []string{
			strconv.Itoa(p.ID),
			truncate(p.Title, 25),
			p.AuthorName,
			a.status(p),
			p.CreatedAt.Local().Format(dateLayout),
		})
	}
	fmt.Fprintln(a.out, "\n"+a.theme.Table([]string{"ID", "Title", "Author", "Status", "Created"}, rows))
	return a.prompt.Pause()
}

func (a *App) selectPost(ctx context.Context) (*views.Post, error) {
	posts, err := a.blog.Posts.List(ctx, models.FilterAll)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(posts))
	for i, p := range posts {
		mark := "[D]"
		if p.Published() {
			mark = "[P]"
		}
		labels[i] = fmt.Sprintf("%d: %s %s by %s", p.ID, mark, truncate(p.Title, 40), p.AuthorName)
	}
	i, err := a.pick("Select a post:", "No posts available.", labels)
	if err != nil || i < 0 {
		return nil, err
	}
	return &posts[i], nil
}

func (a *App) showPost(ctx context.Context) error {
	selected, err := a.selectPost(ctx)
	if err != nil || selected == nil {
		return err
	}
	post, err := a.blog.Posts.Get(ctx, selected.ID)
	if err != nil {
		return err
	}

	published := "N/A"
	status := "Draft"
	if post.Published() {
		published = post.PublishedAt.Local().Format(dateTimeLayout)
		status = "Published"
	}
	a.heading("Post Details")
	fmt.Fprintf(a.out, "ID:        %d\n", post.ID)
	fmt.Fprintf(a.out, "Title:     %s\n", post.Title)
	fmt.Fprintf(a.out, "Author:    %s\n", post.AuthorName)
	fmt.Fprintf(a.out, "Status:    %s\n", status)
	fmt.Fprintf(a.out, "Published: %s\n", published)
	fmt.Fprintf(a.out, "Comments:  %d\n", len(post.Comments))
	fmt.Fprintln(a.out, "\n--- Body ---")
	fmt.Fprintln(a.out, a.markdown(post.Body))
	return a.prompt.Pause()
}

func (a *App) createPost(ctx context.Context) error {
	author, err := a.selectAuthor(ctx)
	if err != nil || author == nil {
		return err
	}

	a.heading("Create New Post")
	title, err := a.prompt.Ask("Title:", "")
	if err != nil {
		return err
	}
	body, err := a.prompt.Multiline("Body (end with an empty line):")
	if err != nil {
		return err
	}

	post, err := a.blog.Posts.Create(ctx, services.PostInput{AuthorID: author.ID, Title: title, Body: body})
	if err != nil {
		return err
	}

	publish, err := a.prompt.Confirm("Publish now?")
	if err != nil {
		return err
	}
	if publish {
		if post, err = a.blog.Posts.Publish(ctx, post.ID); err != nil {
			return err
		}
		a.success(fmt.Sprintf("Post '%s' created and published with ID %d", post.Title, post.ID))
	} else {
		a.success(fmt.Sprintf("Post '%s' created as draft with ID %d", post.Title, post.ID))
	}
	return a.prompt.Pause()
}

func (a *App) editPost(ctx context.Context) error {
	post, err := a.selectPost(ctx)
	if err != nil || post == nil {
		return err
	}

	a.heading("Edit Post")
	title, err := a.prompt.Ask("Title:", post.Title)
	if err != nil {
		return err
	}
	patch := services.PostPatch{Title: models.Some(title)}

	editBody, err := a.prompt.Confirm("Edit body?")
	if err != nil {
		return err
	}
	if editBody {
		body, err := a.prompt.Multiline("New body (end with an empty line):")
		if err != nil {
			return err
		}
		patch.Body = models.Some(body)
	}

	if _, err := a.blog.Posts.Update(ctx, post.ID, patch); err != nil {
		return err
	}
	a.success("Post updated successfully")
	return a.prompt.Pause()
}

func (a *App) togglePublish(ctx context.Context) error {
	post, err := a.selectPost(ctx)
	if err != nil || post == nil {
		return err
	}

	if post.Published() {
		if _, err := a.blog.Posts.Unpublish(ctx, post.ID); err != nil {
			return err
		}
		a.notice("✓ Post unpublished (now a draft)")
	} else {
		if _, err := a.blog.Posts.Publish(ctx, post.ID); err != nil {
			return err
		}
		a.success("Post published!")
	}
	return a.prompt.Pause()
}

func (a *App) deletePost(ctx context.Context) error {
	post, err := a.selectPost(ctx)
	if err != nil || post == nil {
		return err
	}

	ok, err := a.prompt.Confirm(fmt.Sprintf("Delete post '%s' and all its comments?", post.Title))
	if err != nil {
		return err
	}
	if !ok {
		a.notice("Cancelled")
		return a.prompt.Pause()
	}
	if err := a.blog.Posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	a.success("Post deleted")
	return a.prompt.Pause()
}

// ============ Comments ============

func (a *App) commentsMenu(ctx context.Context) error {
	_, err := a.menu(ctx, "Comments Menu:", "← Back", []action{
		{"List all comments", a.listComments},
		{"View comments on a post", a.commentsOnPost},
		{"Add comment to post", a.createComment},
		{"Edit comment", a.editComment},
		{"Delete comment", a.deleteComment},
	}, false)
	return err
}

func (a *App) recentComments(ctx context.Context) ([]views.Comment, error) {
	comments, err := a.blog.Comments.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	if len(comments) > commentLimit {
		comments = comments[:commentLimit]
	}
	return comments, nil
}

func (a *App) listComments(ctx context.Context) error {
	comments, err := a.recentComments(ctx)
	if err != nil {
		return err
	}
	if len(comments) == 0 {
		a.notice("No comments found.")
		return a.prompt.Pause()
	}

	rows := make([][]string, 0, len(comments))
	for _, c := range comments {
		rows = append(rows, []string{
			strconv.Itoa(c.ID),
			truncate(c.PostTitle, 20),
			c.CommenterName,
			truncate(c.Body, 30),
			c.CreatedAt.Local().Format(dateLayout),
		})
	}
	fmt.Fprintln(a.out, "\n"+a.theme.Table([]string{"ID", "Post", "Commenter", "Body", "Created"}, rows))
	return a.prompt.Pause()
}

func (a *App) commentsOnPost(ctx context.Context) error {
	post, err := a.selectPost(ctx)
	if err != nil || post == nil {
		return err
	}
	comments, err := a.blog.Comments.List(ctx, &post.ID)
	if err != nil {
		return err
	}

	if len(comments) == 0 {
		a.notice("No comments on this post.")
		return a.prompt.Pause()
	}
	a.heading(fmt.Sprintf("Comments on '%s'", post.Title))
	for _, c := range comments {
		fmt.Fprintf(a.out, "\n%s (%s):\n", a.theme.Bold.Render(c.CommenterName), c.CreatedAt.Local().Format(dateTimeLayout))
		fmt.Fprintf(a.out, "  %s\n", c.Body)
	}
	return a.prompt.Pause()
}

func (a *App) createComment(ctx context.Context) error {
	post, err := a.selectPost(ctx)
	if err != nil || post == nil {
		return err
	}

	a.heading(fmt.Sprintf("Add Comment to '%s'", post.Title))
	in := services.CommentInput{PostID: post.ID}

	asAuthor, err := a.prompt.Confirm("Comment as registered author?")
	if err != nil {
		return err
	}
	if asAuthor {
		author, err := a.selectAuthor(ctx)
		if err != nil || author == nil {
			return err
		}
		in.AuthorID = &author.ID
	} else {
		name, err := a.prompt.Ask("Your name:", "")
		if err != nil {
			return err
		}
		in.CommenterName = &name
	}

	if in.Body, err = a.prompt.Ask("Comment:", ""); err != nil {
		return err
	}
	if _, err := a.blog.Comments.Create(ctx, in); err != nil {
		return err
	}
	a.success("Comment added successfully")
	return a.prompt.Pause()
}

func (a *App) selectComment(ctx context.Context) (*views.Comment, error) {
	comments, err := a.recentComments(ctx)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(comments))
	for i, c := range comments {
		labels[i] = fmt.Sprintf("%d: [%s] %s: %s", c.ID, truncate(c.PostTitle, 15), c.CommenterName, truncate(c.Body, 30))
	}
	i, err := a.pick("Select a comment:", "No comments available.", labels)
	if err != nil || i < 0 {
		return nil, err
	}
	return &comments[i], nil
}

func (a *App) editComment(ctx context.Context) error {
	comment, err := a.selectComment(ctx)
	if err != nil || comment == nil {
		return err
	}

	a.heading("Edit Comment")
	body, err := a.prompt.Ask("Comment:", comment.Body)
	if err != nil {
		return err
	}
	if _, err := a.blog.Comments.Update(ctx, comment.ID, services.CommentPatch{Body: models.Some(body)}); err != nil {
		return err
	}
	a.success("Comment updated successfully")
	return a.prompt.Pause()
}

func (a *App) deleteComment(ctx context.Context) error {
	comment, err := a.selectComment(ctx)
	if err != nil || comment == nil {
		return err
	}

	ok, err := a.prompt.Confirm("Delete this comment?")
	if err != nil {
		return err
	}
	if !ok {
		a.notice("Cancelled")
		return a.prompt.Pause()
	}
	if err := a.blog.Comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	a.success("Comment deleted")
	return a.prompt.Pause()
}
