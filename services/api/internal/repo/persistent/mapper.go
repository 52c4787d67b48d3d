package persistent

import (
	"cognition-berries/pkg/models"
	"cognition-berries/services/api/internal/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
)

func ToCourseEntity(m *models.Course) *entity.Course {
	if m == nil {
		return nil
	}
	lessons := make([]entity.Lesson, 0, len(m.Lessons))
	for _, l := range m.Lessons {
		lessons = append(lessons, entity.Lesson{LessonID: l.LessonID, Title: l.Title, Content: l.Content, Order: l.Order})
	}
	course := &entity.Course{
		ID:          m.ID.Hex(),
		CourseID:    m.CourseID,
		Title:       m.Title,
		Description: m.Description,
		Price:       m.Price,
		Metadata:    map[string]interface{}(m.Metadata),
		Lessons:     lessons,
		Image:       m.Image,
		ImageType:   m.ImageType,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ImageData != nil {
		course.ImageData = &entity.ImageData{
			ID:       m.ImageData.ID.Hex(),
			Filename: m.ImageData.Filename,
			MimeType: m.ImageData.MimeType,
			Size:     m.ImageData.Size,
			Data:     m.ImageData.Data,
		}
	}
	return course
}

func ToLessonModels(lessons []entity.Lesson) []models.Lesson {
	out := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, models.Lesson{LessonID: l.LessonID, Title: l.Title, Content: l.Content, Order: l.Order})
	}
	return out
}

func ToImageEntity(m *models.Image) *entity.Image {
	if m == nil {
		return nil
	}
	return &entity.Image{
		ID:         m.ID.Hex(),
		Filename:   m.Filename,
		MimeType:   m.MimeType,
		Size:       m.Size,
		Data:       m.Data,
		Type:       m.Type,
		CourseID:   m.CourseID,
		UploadedAt: m.UploadedAt,
		UploadedBy: m.UploadedBy,
	}
}

func ToImageModel(e *entity.Image) *models.Image {
	m := &models.Image{
		Filename:   e.Filename,
		MimeType:   e.MimeType,
		Size:       e.Size,
		Data:       e.Data,
		Type:       e.Type,
		CourseID:   e.CourseID,
		UploadedAt: e.UploadedAt,
		UploadedBy: e.UploadedBy,
	}
	if id, err := bson.ObjectIDFromHex(e.ID); err == nil {
		m.ID = id
	}
	return m
}

func ToUserEntity(m *models.User) *entity.User {
	if m == nil {
		return nil
	}
	return &entity.User{
		ID:        m.ID.Hex(),
		UID:       m.UID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      entity.UserRole(m.Role),
		AvatarURL: m.AvatarURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToUserModel(e *entity.User) *models.User {
	m := &models.User{
		UID:       e.UID,
		Email:     e.Email,
		Name:      e.Name,
		Role:      models.UserRole(e.Role),
		AvatarURL: e.AvatarURL,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
	if id, err := bson.ObjectIDFromHex(e.ID); err == nil {
		m.ID = id
	}
	return m
}

func ToForumPostEntity(m *models.ForumPost) *entity.ForumPost {
	if m == nil {
		return nil
	}
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &entity.ForumPost{
		ID:         m.ID.Hex(),
		Title:      m.Title,
		Content:    m.Content,
		Category:   m.Category,
		Tags:       tags,
		AuthorID:   m.AuthorID,
		AuthorName: m.AuthorName,
		ReplyCount: m.ReplyCount,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func ToForumPostModel(e *entity.ForumPost) *models.ForumPost {
	return &models.ForumPost{
		Title:      e.Title,
		Content:    e.Content,
		Category:   e.Category,
		Tags:       e.Tags,
		AuthorID:   e.AuthorID,
		AuthorName: e.AuthorName,
		ReplyCount: e.ReplyCount,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
	}
}

func ToForumReplyEntity(m *models.ForumReply) *entity.ForumReply {
	if m == nil {
		return nil
	}
	return &entity.ForumReply{
		ID:            m.ID.Hex(),
		PostID:        m.PostID,
		ParentReplyID: m.ParentReplyID,
		Content:       m.Content,
		AuthorID:      m.AuthorID,
		AuthorName:    m.AuthorName,
		CreatedAt:     m.CreatedAt,
	}
}

func ToForumReplyModel(e *entity.ForumReply) *models.ForumReply {
	return &models.ForumReply{
		PostID:        e.PostID,
		ParentReplyID: e.ParentReplyID,
		Content:       e.Content,
		AuthorID:      e.AuthorID,
		AuthorName:    e.AuthorName,
		CreatedAt:     e.CreatedAt,
	}
}

func ToReviewEntity(m *models.Review) *entity.Review {
	if m == nil {
		return nil
	}
	return &entity.Review{
		ID:        m.ID.Hex(),
		CourseID:  m.CourseID,
		UserID:    m.UserID,
		UserName:  m.UserName,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func ToCartEntity(m *models.Cart, userID string) *entity.Cart {
	cart := &entity.Cart{UserID: userID, Items: []entity.CartItem{}}
	if m == nil {
		return cart
	}
	for _, item := range m.Items {
		cart.Items = append(cart.Items, entity.CartItem{
			CourseID: item.CourseID,
			Title:    item.Title,
			Price:    item.Price,
			AddedAt:  item.AddedAt,
		})
	}
	cart.Total = m.Total()
	cart.UpdatedAt = m.UpdatedAt
	return cart
}

func ToPaymentEntity(m *models.Payment) *entity.Payment {
	if m == nil {
		return nil
	}
	return &entity.Payment{
		ID:               m.ID.Hex(),
		Reference:        m.Reference,
		UserID:           m.UserID,
		Email:            m.Email,
		CourseIDs:        m.CourseIDs,
		Amount:           m.Amount,
		Status:           entity.PaymentStatus(m.Status),
		AuthorizationURL: m.AuthorizationURL,
		AccessCode:       m.AccessCode,
		CreatedAt:        m.CreatedAt,
		VerifiedAt:       m.VerifiedAt,
	}
}

func ToPaymentModel(e *entity.Payment) *models.Payment {
	return &models.Payment{
		Reference:        e.Reference,
		UserID:           e.UserID,
		Email:            e.Email,
		CourseIDs:        e.CourseIDs,
		Amount:           e.Amount,
		Status:           models.PaymentStatus(e.Status),
		AuthorizationURL: e.AuthorizationURL,
		AccessCode:       e.AccessCode,
		CreatedAt:        e.CreatedAt,
		VerifiedAt:       e.VerifiedAt,
	}
}

func ToPurchaseEntity(m *models.Purchase) *entity.Purchase {
	if m == nil {
		return nil
	}
	return &entity.Purchase{
		ID:          m.ID.Hex(),
		UserID:      m.UserID,
		CourseID:    m.CourseID,
		PaymentRef:  m.PaymentRef,
		Amount:      m.Amount,
		PurchasedAt: m.PurchasedAt,
	}
}

func ToProgressEntity(m *models.Progress, userID, courseID string) *entity.Progress {
	progress := &entity.Progress{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []string{},
		QuizResults:      map[string]entity.QuizResult{},
	}
	if m == nil {
		return progress
	}
	progress.CompletedLessons = append(progress.CompletedLessons, m.CompletedLessons...)
	for quizID, r := range m.QuizResults {
		progress.QuizResults[quizID] = entity.QuizResult{
			Score:         r.Score,
			Total:         r.Total,
			Passed:        r.Passed,
			Attempts:      r.Attempts,
			LastAttemptAt: r.LastAttemptAt,
		}
	}
	progress.Percent = m.Percent
	progress.UpdatedAt = m.UpdatedAt
	return progress
}

func ToQuizEntity(m *models.Quiz) *entity.Quiz {
	if m == nil {
		return nil
	}
	questions := make([]entity.Question, 0, len(m.Questions))
	for _, q := range m.Questions {
		questions = append(questions, entity.Question{Prompt: q.Prompt, Options: q.Options, AnswerIndex: q.AnswerIndex})
	}
	return &entity.Quiz{
		ID:        m.ID.Hex(),
		CourseID:  m.CourseID,
		Title:     m.Title,
		PassMark:  m.PassMark,
		Questions: questions,
		CreatedAt: m.CreatedAt,
	}
}

func ToQuizModel(e *entity.Quiz) *models.Quiz {
	questions := make([]models.Question, 0, len(e.Questions))
	for _, q := range e.Questions {
		questions = append(questions, models.Question{Prompt: q.Prompt, Options: q.Options, AnswerIndex: q.AnswerIndex})
	}
	return &models.Quiz{
		CourseID:  e.CourseID,
		Title:     e.Title,
		PassMark:  e.PassMark,
		Questions: questions,
		CreatedAt: e.CreatedAt,
	}
}
