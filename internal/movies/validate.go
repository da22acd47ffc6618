package movies

import "MoviesApp/pkg/kit"

// NewMovie is a validated create-movie request.
type NewMovie struct {
	ImdbID   string
	Title    string
	Director string
	Year     string
	Poster   string
}

type createMovieReq struct {
	ImdbID   string `json:"imdbId"`
	Title    string `json:"title"`
	Director string `json:"director"`
	Year     string `json:"year"`
	Poster   string `json:"poster"`
}

func (r createMovieReq) validate() (NewMovie, error) {
	var c kit.Checker
	in := NewMovie{
		ImdbID:   r.ImdbID,
		Title:    c.Required("title", r.Title),
		Director: c.Required("director", r.Director),
		Year:     c.Required("year", r.Year),
		Poster:   r.Poster,
	}
	if err := c.Err(); err != nil {
		return NewMovie{}, err
	}
	return in, nil
}

type addCommentReq struct {
	Text string `json:"text"`
}

func (r addCommentReq) validate() (string, error) {
	var c kit.Checker
	text := c.Required("text", r.Text)
	if err := c.Err(); err != nil {
		return "", err
	}
	return text, nil
}
