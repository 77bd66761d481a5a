package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"civicfix-be/config"
	"civicfix-be/models"
	"civicfix-be/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// CreateComplaint handles complaint submission by a citizen. The ward is
// resolved synchronously and creation fails closed when no ward contains the
// location. Classification runs after the response so a slow or failing
// vision call never blocks the citizen.
func CreateComplaint(c *gin.Context) {
	userObjID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Description string  `json:"description" binding:"required,max=1000"`
		ImageURL    *string `json:"imageUrl,omitempty"`
		Location    struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		} `json:"location" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lat, lng := *input.Location.Lat, *input.Location.Lng
	if err := services.ValidateLocation(lat, lng); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	ward, err := geoIndex.ResolveWard(lat, lng)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	imageURL := models.PlaceholderImageURL
	if input.ImageURL != nil && *input.ImageURL != "" {
		imageURL = *input.ImageURL
	}

	now := time.Now()
	complaint := models.Complaint{
		ID:          primitive.NewObjectID(),
		ReportedBy:  userObjID,
		Description: input.Description,
		ImageURL:    imageURL,
		Location:    models.GeoPoint{Lat: lat, Lng: lng},
		WardID:      ward.ID,
		AICategory:  models.CategoryOther,
		AISeverity:  models.SeverityMedium,
		AIKeywords:  []string{},
		AIStatus:    models.SourceFallback,
		Status:      models.StatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	complaint.PriorityScore = services.CalculatePriority(&complaint, now)

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = complaintCollection.InsertOne(ctx, complaint)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create complaint"})
		return
	}

	possibleDuplicate := checkNearbyDuplicate(ctx, lat, lng, complaint.ID)

	c.JSON(http.StatusCreated, gin.H{
		"complaint":         complaint,
		"ward":              gin.H{"id": ward.ID, "name": ward.Name, "city": ward.City},
		"possibleDuplicate": possibleDuplicate,
	})

	go classifyAndRescore(complaint.ID, input.Description, imageURL)
}

// classifyAndRescore runs the classification pipeline for a stored
// complaint and persists the tags plus a fresh score. Best-effort: the
// complaint already exists with placeholder tags.
func classifyAndRescore(complaintID primitive.ObjectID, description, imageURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result := classifier.Classify(ctx, description, imageURL)

	complaintCollection := config.GetCollection("complaints")
	_, err := complaintCollection.UpdateOne(ctx,
		bson.M{"_id": complaintID},
		bson.M{"$set": bson.M{
			"aiCategory": result.Category,
			"aiSeverity": result.Severity,
			"aiKeywords": result.Keywords,
			"aiStatus":   result.Source,
			"updatedAt":  time.Now(),
		}},
	)
	if err != nil {
		logger.Warn("failed to persist classification",
			zap.String("complaint_id", complaintID.Hex()),
			zap.Error(err))
		return
	}

	// Severity changes the base term, so the score is recomputed once the
	// classification lands.
	if _, err := recomputePriority(ctx, complaintID); err != nil {
		logger.Warn("failed to rescore after classification",
			zap.String("complaint_id", complaintID.Hex()),
			zap.Error(err))
	}
}

// checkNearbyDuplicate flags unresolved complaints within 100m of a fresh
// submission. The category is not known yet at this point (classification
// lands asynchronously), so the hint is proximity-only; category-aware
// duplicate detection is the DuplicateCheck endpoint. Advisory only; errors
// degrade to "no duplicate".
func checkNearbyDuplicate(ctx context.Context, lat, lng float64, excludeID primitive.ObjectID) bool {
	complaintCollection := config.GetCollection("complaints")

	cursor, err := complaintCollection.Find(ctx, bson.M{
		"_id":    bson.M{"$ne": excludeID},
		"status": bson.M{"$ne": models.StatusResolved},
	})
	if err != nil {
		return false
	}
	defer cursor.Close(ctx)

	var candidates []models.Complaint
	if err := cursor.All(ctx, &candidates); err != nil {
		return false
	}

	nearby := services.FilterNearby(candidates, lat, lng, services.DuplicateRadiusMeters)
	return len(nearby) > 0
}

// DuplicateCheck reports whether an unresolved complaint of the given
// category already exists within 100m of the point. Used by clients before
// submission; a duplicate is a warning, never a rejection.
func DuplicateCheck(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	if err := services.ValidateLocation(lat, lng); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	category := c.Query("category")
	if !models.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
		return
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := complaintCollection.Find(ctx, bson.M{
		"aiCategory": category,
		"status":     bson.M{"$ne": models.StatusResolved},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var candidates []models.Complaint
	if err := cursor.All(ctx, &candidates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode complaints"})
		return
	}

	duplicate := services.HasNearbyDuplicate(candidates, lat, lng, models.ComplaintCategory(category))
	c.JSON(http.StatusOK, gin.H{"duplicate": duplicate})
}

// GetComplaint retrieves a complaint by its ID with vote information
func GetComplaint(c *gin.Context) {
	idParam := c.Param("id")
	complaintID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	complaintCollection := config.GetCollection("complaints")
	voteCollection := config.GetCollection("votes")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var complaint models.Complaint
	err = complaintCollection.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaint"})
		}
		return
	}

	// Check if current user has upvoted (if authenticated)
	userHasVoted := false
	if userIDStr, exists := c.Get("user_id"); exists {
		if currentUser, err := primitive.ObjectIDFromHex(userIDStr.(string)); err == nil {
			count, err := voteCollection.CountDocuments(ctx, bson.M{
				"complaint": complaintID,
				"user":      currentUser,
			})
			if err == nil && count > 0 {
				userHasVoted = true
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"complaint":    complaint,
		"userHasVoted": userHasVoted,
	})
}

// GetAllComplaints handles retrieving complaints with filtering, pagination
// and sorting. The default order is priority score descending, which is the
// ordering consumed by the discovery feed.
func GetAllComplaints(c *gin.Context) {
	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	category := c.Query("category")
	status := c.Query("status")
	search := c.Query("search")
	sortParam := c.DefaultQuery("sort", "priority")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	filter := bson.M{}

	if category != "" && category != "all" {
		filter["aiCategory"] = category
	}

	if status != "" && status != "all" {
		filter["status"] = status
	}

	if search != "" {
		filter["description"] = bson.M{"$regex": search, "$options": "i"}
	}

	skip := (page - 1) * limit

	var sortOptions bson.D
	switch sortParam {
	case "oldest":
		sortOptions = bson.D{{Key: "createdAt", Value: 1}}
	case "newest":
		sortOptions = bson.D{{Key: "createdAt", Value: -1}}
	case "priority":
		fallthrough
	default:
		sortOptions = bson.D{{Key: "priorityScore", Value: -1}}
	}

	totalCount, err := complaintCollection.CountDocuments(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count complaints"})
		return
	}

	findOptions := options.Find().
		SetSort(sortOptions).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := complaintCollection.Find(ctx, filter, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode complaints"})
		return
	}

	totalPages := int((totalCount + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, gin.H{
		"complaints":      complaints,
		"totalComplaints": totalCount,
		"totalPages":      totalPages,
		"currentPage":     page,
	})
}

// GetMyComplaints retrieves all complaints created by the requesting citizen
func GetMyComplaints(c *gin.Context) {
	userObjID, ok := currentUserID(c)
	if !ok {
		return
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := complaintCollection.Find(ctx, bson.M{"reportedBy": userObjID}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode complaints"})
		return
	}

	c.JSON(http.StatusOK, complaints)
}

// UpdateComplaint allows the reporter to edit description, image or location
// while the complaint is still in the submitted state. A location edit
// re-resolves the ward and is rejected outright when no ward contains the
// new point, so a complaint is never left wardless. Edits to description or
// image re-run classification.
func UpdateComplaint(c *gin.Context) {
	idParam := c.Param("id")
	complaintID, err := primitive.ObjectIDFromHex(idParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid complaint ID"})
		return
	}

	userObjID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input struct {
		Description *string `json:"description,omitempty"`
		ImageURL    *string `json:"imageUrl,omitempty"`
		Location    *struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		} `json:"location,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var complaint models.Complaint
	err = complaintCollection.FindOne(ctx, bson.M{"_id": complaintID}).Decode(&complaint)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Complaint not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaint"})
		}
		return
	}

	if complaint.ReportedBy != userObjID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to update this complaint"})
		return
	}

	if complaint.Status != models.StatusSubmitted {
		c.JSON(http.StatusForbidden, gin.H{"error": "Complaint can only be edited while submitted"})
		return
	}

	update := bson.M{"updatedAt": time.Now()}
	reclassify := false

	if input.Description != nil {
		if *input.Description == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description cannot be empty"})
			return
		}
		update["description"] = *input.Description
		complaint.Description = *input.Description
		reclassify = true
	}

	if input.ImageURL != nil && *input.ImageURL != "" {
		update["imageUrl"] = *input.ImageURL
		complaint.ImageURL = *input.ImageURL
		reclassify = true
	}

	if input.Location != nil {
		lat, lng := *input.Location.Lat, *input.Location.Lng
		ward, err := geoIndex.ResolveWard(lat, lng)
		if err != nil {
			// Edit rejected; the complaint keeps its previous ward.
			c.JSON(statusFromError(err), gin.H{"error": err.Error()})
			return
		}
		update["location"] = models.GeoPoint{Lat: lat, Lng: lng}
		update["wardId"] = ward.ID
	}

	_, err = complaintCollection.UpdateOne(ctx, bson.M{"_id": complaintID}, bson.M{"$set": update})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update complaint"})
		return
	}

	updated, err := recomputePriority(ctx, complaintID)
	if err != nil {
		c.JSON(statusFromError(err), gin.H{"error": "Failed to recompute priority"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Complaint updated successfully",
		"complaint": updated,
	})

	if reclassify {
		go classifyAndRescore(complaintID, complaint.Description, complaint.ImageURL)
	}
}

// RecentComplaints returns the most recent complaints for map pins
func RecentComplaints(c *gin.Context) {
	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	limit := 19

	projection := bson.M{
		"_id":           1,
		"description":   1,
		"location":      1,
		"aiCategory":    1,
		"priorityScore": 1,
		"status":        1,
		"createdAt":     1,
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(projection)

	cursor, err := complaintCollection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve recent complaints"})
		return
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode recent complaints"})
		return
	}

	c.JSON(http.StatusOK, complaints)
}

// NearbyComplaints returns complaints within a radius of a point
func NearbyComplaints(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	if err := services.ValidateLocation(lat, lng); err != nil {
		c.JSON(statusFromError(err), gin.H{"error": err.Error()})
		return
	}

	radius := float64(services.DefaultNearbyRadiusMeters)
	if r, err := strconv.ParseFloat(c.Query("radius"), 64); err == nil && r > 0 {
		radius = r
	}

	complaintCollection := config.GetCollection("complaints")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cursor, err := complaintCollection.Find(ctx, bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve complaints"})
		return
	}
	defer cursor.Close(ctx)

	var candidates []models.Complaint
	if err := cursor.All(ctx, &candidates); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode complaints"})
		return
	}

	c.JSON(http.StatusOK, services.FilterNearby(candidates, lat, lng, radius))
}
