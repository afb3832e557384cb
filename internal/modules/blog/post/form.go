package post

import (
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/mx-space/blogicum/internal/models"
	"github.com/mx-space/blogicum/internal/pkg/validate"
	"gorm.io/gorm"
)

// formDateLayout is how pub_date is echoed back into forms.
const formDateLayout = "2006-01-02T15:04"

// Form is the submitted post form. Author is never part of it.
type Form struct {
	Title       string  `form:"title"        json:"title"        binding:"required,max=256"`
	Text        string  `form:"text"         json:"text"         binding:"required"`
	PubDate     string  `form:"pub_date"     json:"pub_date"     binding:"required"`
	Location    string  `form:"location"     json:"location"`
	Category    string  `form:"category"     json:"category"`
	IsPublished *string `form:"is_published" json:"is_published"`
	ImageClear  *string `form:"image_clear"  json:"image_clear,omitempty"`
	Image       string  `form:"-"            json:"image,omitempty"`
}

// Input is a cleaned Form ready to be written.
type Input struct {
	Title       string
	Text        string
	PubDate     time.Time
	LocationID  *uint
	CategoryID  *uint
	IsPublished bool
	Image       *multipart.FileHeader
	ImageClear  bool
}

// FormFor renders post as a bound form.
func FormFor(p *models.PostModel, loc *time.Location, imageURL string) Form {
	published := strconv.FormatBool(p.IsPublished)
	f := Form{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.In(loc).Format(formDateLayout),
		IsPublished: &published,
		Image:       imageURL,
	}
	if p.LocationID != nil {
		f.Location = strconv.FormatUint(uint64(*p.LocationID), 10)
	}
	if p.CategoryID != nil {
		f.Category = strconv.FormatUint(uint64(*p.CategoryID), 10)
	}
	return f
}

// EmptyForm is the create form with a publication date of now.
func EmptyForm(now time.Time, loc *time.Location) Form {
	published := "true"
	return Form{PubDate: now.In(loc).Format(formDateLayout), IsPublished: &published}
}

// Clean validates the parts of f that binding rules cannot express. Field
// messages are returned when the form is invalid.
func (f *Form) Clean(db *gorm.DB, loc *time.Location) (*Input, map[string]string, error) {
	fieldErrors := map[string]string{}
	in := &Input{
		Title:       strings.TrimSpace(f.Title),
		Text:        f.Text,
		IsPublished: parseCheckbox(f.IsPublished),
		ImageClear:  f.ImageClear != nil && isChecked(*f.ImageClear),
	}
	if in.Title == "" {
		fieldErrors["title"] = "This field is required."
	}

	pubDate, err := validate.ParsePubDate(f.PubDate, loc)
	if err != nil {
		fieldErrors["pub_date"] = "Enter a valid date/time."
	} else {
		in.PubDate = pubDate
	}

	in.LocationID, err = lookupChoice(db, &models.LocationModel{}, f.Location)
	if errors.Is(err, errors.NotValid) {
		fieldErrors["location"] = "Select a valid choice. That choice is not one of the available choices."
	} else if err != nil {
		return nil, nil, err
	}
	in.CategoryID, err = lookupChoice(db, &models.CategoryModel{}, f.Category)
	if errors.Is(err, errors.NotValid) {
		fieldErrors["category"] = "Select a valid choice. That choice is not one of the available choices."
	} else if err != nil {
		return nil, nil, err
	}

	if len(fieldErrors) > 0 {
		return nil, fieldErrors, nil
	}
	return in, nil, nil
}

// lookupChoice resolves an optional foreign key field. Blank means none.
func lookupChoice(db *gorm.DB, model interface{}, raw string) (*uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, errors.NotValidf("choice %q", raw)
	}
	var count int64
	if err := db.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, errors.Annotate(err, "lookup choice")
	}
	if count == 0 {
		return nil, errors.NotValidf("choice %q", raw)
	}
	v := uint(id)
	return &v, nil
}

// parseCheckbox reads an HTML checkbox. An absent field keeps the model
// default of published.
func parseCheckbox(raw *string) bool {
	if raw == nil {
		return true
	}
	return isChecked(*raw)
}

func isChecked(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}
